package quiz

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutSession(sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO sessions (id,epoch,data_json,created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET epoch=EXCLUDED.epoch, data_json=EXCLUDED.data_json`,
		sess.ID, sess.Epoch, string(data), time.Now().Unix())
	return err
}

func (s *SQLStore) GetSession(id string) (Session, error) {
	row := s.db.QueryRow(`SELECT data_json FROM sessions WHERE id=$1`, id)
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *SQLStore) DeleteSession(id string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id=$1`, id)
	return err
}
