package keychain

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// SqlitePib is the certificate half of a KeyChain: a sqlite table
// mapping a certificate's Name to its Data packet encoding, mirroring
// the teacher's sqlite-pib.go certificates table.
type SqlitePib struct {
	db *sql.DB
}

// OpenSqlitePib opens (creating if absent) a sqlite database at path and
// ensures its certificates table exists.
func OpenSqlitePib(path string) (*SqlitePib, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	const schema = `CREATE TABLE IF NOT EXISTS certificates (
		name TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SqlitePib{db: db}, nil
}

func (p *SqlitePib) String() string { return "sqlite-pib" }

// Close releases the underlying database.
func (p *SqlitePib) Close() error { return p.db.Close() }

// Get implements KeyChain.
func (p *SqlitePib) Get(name string) ([]byte, bool) {
	var data []byte
	err := p.db.QueryRow("SELECT data FROM certificates WHERE name = ?", name).Scan(&data)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set implements KeyChain.
func (p *SqlitePib) Set(name string, value []byte) error {
	_, err := p.db.Exec(
		"INSERT INTO certificates (name, data) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET data = excluded.data",
		name, value,
	)
	return err
}

// Del implements KeyChain.
func (p *SqlitePib) Del(name string) error {
	_, err := p.db.Exec("DELETE FROM certificates WHERE name = ?", name)
	return err
}

// PutCertificate stores cert under its own Name.
func (p *SqlitePib) PutCertificate(cert *ndn.Data) error {
	return p.Set(cert.Name.String(), cert.Wire())
}

// GetCertificate loads and parses the certificate stored under name.
func (p *SqlitePib) GetCertificate(name ndn.Name) (*ndn.Data, error) {
	value, ok := p.Get(name.String())
	if !ok {
		return nil, ndn.ErrInvalidValue{Item: "certificate name", Value: name.String()}
	}
	d := tlv.NewDecoder(value)
	el, ok := d.Next()
	if !ok {
		return nil, d.Err()
	}
	return ndn.ParseData(el)
}
