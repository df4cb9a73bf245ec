package bsql

// Kind is the kind of a generated statement.
type Kind uint8

// Statement kinds.
const (
	KindSelect Kind = iota + 1
	KindInsert
	KindUpdate
	KindDelete
)

var kindNames = [...]string{
	KindSelect: "SELECT",
	KindInsert: "INSERT",
	KindUpdate: "UPDATE",
	KindDelete: "DELETE",
}

// String returns the SQL verb of the kind.
func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// Statement is a generated SQL statement with its positional arguments.
type Statement struct {
	Kind Kind
	// Table is the base table of the statement.
	Table string
	SQL   string
	Args  []any
	// Tables lists every table the statement reads or writes, base first.
	Tables []string
}

// Fingerprint returns the cache key of the statement.
func (s *Statement) Fingerprint() (Fingerprint, error) {
	return NewFingerprint(s.SQL, s.Args)
}
