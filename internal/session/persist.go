package session

import (
	"os"
	"strings"
	"time"

	"github.com/Makepad-fr/dropwise/internal/store/jsonstore"
)

// RecordName is the fixed key the session is stored under.
const RecordName = "auth-storage"

// TokenEnv overrides any stored token when set.
const TokenEnv = "DROPWISE_TOKEN"

const (
	SourceFile = "file"
	SourceEnv  = "env"
)

// Record is the persisted shape of a session.
type Record struct {
	Token           string    `json:"token"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	SavedAt         time.Time `json:"saved_at"`

	Source string `json:"-"` // "env" | "file"
}

// Persister is durable client storage for the session record.
type Persister interface {
	Load() (Record, bool, error)
	Save(Record) error
}

// FilePersister keeps the record in a jsonstore directory and honours
// the DROPWISE_TOKEN override on load.
type FilePersister struct {
	store *jsonstore.Store
}

func NewFilePersister(store *jsonstore.Store) *FilePersister {
	return &FilePersister{store: store}
}

func (p *FilePersister) Load() (Record, bool, error) {
	// 1) env override
	if env := strings.TrimSpace(os.Getenv(TokenEnv)); env != "" {
		return Record{Token: StripBearer(env), IsAuthenticated: true, Source: SourceEnv}, true, nil
	}

	// 2) file
	var rec Record
	found, err := p.store.Load(RecordName, &rec)
	if err != nil || !found {
		return Record{}, found, err
	}
	rec.Token = StripBearer(strings.TrimSpace(rec.Token))
	rec.Source = SourceFile
	return rec, true, nil
}

func (p *FilePersister) Save(rec Record) error {
	return p.store.Save(RecordName, rec)
}

// Path is where the record lives on disk.
func (p *FilePersister) Path() string {
	return p.store.Path(RecordName)
}

// StripBearer removes a leading "Bearer " scheme.
func StripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
