package connection

import (
	"fmt"
	"strings"
	"sync"

	"fjacquet/logmongo/internal/apperror"

	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	// DefaultDatabase is used when the connection string names no database.
	DefaultDatabase = "logStore"
	// DefaultCollection is used when no collection name is configured.
	DefaultCollection = "logs"
)

// Target is a fully resolved write destination.
type Target struct {
	ConnectionString string
	Database         string
	Collection       string
}

// Namespace returns "database.collection".
func (t Target) Namespace() string {
	return t.Database + "." + t.Collection
}

// Redacted returns the connection string with its password masked.
func (t Target) Redacted() string {
	return Redact(t.ConnectionString)
}

// Redact masks the password in a MongoDB URI.
func Redact(uri string) string {
	scheme := strings.Index(uri, "://")
	if scheme < 0 {
		return uri
	}
	rest := uri[scheme+3:]
	end := strings.IndexAny(rest, "/?")
	if end < 0 {
		end = len(rest)
	}
	at := strings.LastIndex(rest[:end], "@")
	if at < 0 {
		return uri
	}
	user, _, hasPassword := strings.Cut(rest[:at], ":")
	if !hasPassword {
		return uri
	}
	return uri[:scheme+3] + user + ":xxxxx" + rest[at:]
}

// Resolver determines the Target for a write. A named reference found in
// the Registry takes precedence over the literal ConnectionString.
type Resolver struct {
	Registry             Registry
	ConnectionString     string
	ConnectionStringName string
	CollectionName       string

	mu     sync.Mutex
	parsed map[string]parsedURI
}

type parsedURI struct {
	database string
	err      error
}

var parseURI = connstring.ParseAndValidate

// Resolve returns the current Target. It is evaluated on every call so a
// connection string registered after startup is picked up.
func (r *Resolver) Resolve() (Target, error) {
	uri := r.connectionString()
	if strings.TrimSpace(uri) == "" {
		return Target{}, &apperror.ConfigurationError{
			Setting: "connection_string",
			Reason:  "must provide a valid connection string",
		}
	}

	db, err := r.databaseName(uri)
	if err != nil {
		return Target{}, &apperror.ConfigurationError{
			Setting: "connection_string",
			Reason:  "cannot parse connection string " + Redact(uri),
			Err:     err,
		}
	}

	collection := r.CollectionName
	if collection == "" {
		collection = DefaultCollection
	}
	return Target{ConnectionString: uri, Database: db, Collection: collection}, nil
}

func (r *Resolver) connectionString() string {
	if r.ConnectionStringName != "" && r.Registry != nil {
		if v, ok := r.Registry.Lookup(r.ConnectionStringName); ok {
			return v
		}
	}
	return r.ConnectionString
}

// databaseName parses uri once and caches the database it names, or the
// parse error, so a bad URI is not re-parsed (and re-resolved over DNS for
// mongodb+srv) on every append.
func (r *Resolver) databaseName(uri string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.parsed[uri]; ok {
		return p.database, p.err
	}

	var p parsedURI
	cs, err := parseURI(uri)
	if err != nil {
		p.err = fmt.Errorf("invalid MongoDB URI: %w", err)
	} else {
		p.database = cs.Database
		if p.database == "" {
			p.database = DefaultDatabase
		}
	}
	if r.parsed == nil {
		r.parsed = make(map[string]parsedURI)
	}
	r.parsed[uri] = p
	return p.database, p.err
}
