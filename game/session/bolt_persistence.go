package session

import (
	"bytes"
	"fmt"
	"strings"

	bolt "github.com/coreos/bbolt"
	"github.com/vmihailenco/msgpack"

	"github.com/stat9k/Cluedo-Text/game/service"
)

var sessionsBucket = []byte("sessions")

// BoltPersistence implements SessionPersistence in a single bbolt database.
// Each session is one msgpack record keyed by its lowercased ID.
type BoltPersistence struct {
	filename      string
	database      *bolt.DB
	configManager service.ConfigManager
}

// NewBoltPersistence opens (or creates) the database file
func NewBoltPersistence(filename string, configManager service.ConfigManager) (*BoltPersistence, error) {
	db, err := bolt.Open(filename, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database %s: %w", filename, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}

	return &BoltPersistence{
		filename:      filename,
		database:      db,
		configManager: configManager,
	}, nil
}

// Close releases the database file
func (bp *BoltPersistence) Close() error {
	return bp.database.Close()
}

func sessionKey(id string) []byte {
	return []byte(strings.ToLower(id))
}

// packSession encodes using the JSON field names so both stores share one schema
func packSession(data *PersistedSessionData) ([]byte, error) {
	var buf bytes.Buffer
	writer := msgpack.NewEncoder(&buf)
	writer.UseJSONTag(true)
	if err := writer.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unpackSession(raw []byte) (*PersistedSessionData, error) {
	var data PersistedSessionData
	reader := msgpack.NewDecoder(bytes.NewReader(raw))
	reader.UseJSONTag(true)
	if err := reader.Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Save persists a session record
func (bp *BoltPersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data, err := snapshot(session, bp.configManager)
	if err != nil {
		return err
	}
	raw, err := packSession(data)
	if err != nil {
		return fmt.Errorf("failed to encode session data: %w", err)
	}

	return bp.database.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put(sessionKey(session.ID), raw)
	})
}

// Load retrieves and rebuilds a session
func (bp *BoltPersistence) Load(id string) (*service.Session, error) {
	var raw []byte
	bp.database.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(sessionsBucket).Get(sessionKey(id)); v != nil {
			// Values are only valid inside the transaction
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if raw == nil {
		return nil, ErrSessionNotFound
	}

	data, err := unpackSession(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session data: %w", err)
	}
	return restore(data, bp.configManager)
}

// Delete removes a session record
func (bp *BoltPersistence) Delete(id string) error {
	if !bp.Exists(id) {
		return ErrSessionNotFound
	}
	return bp.database.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete(sessionKey(id))
	})
}

// ListAll returns all persisted session IDs
func (bp *BoltPersistence) ListAll() ([]string, error) {
	var ids []string
	err := bp.database.View(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Exists checks if a session record exists
func (bp *BoltPersistence) Exists(id string) bool {
	found := false
	bp.database.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(sessionsBucket).Get(sessionKey(id)) != nil
		return nil
	})
	return found
}
