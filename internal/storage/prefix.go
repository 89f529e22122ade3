package storage

// PrefixDB scopes a DB to one namespace by prepending a fixed prefix to
// every key. Each chain's wallet record lives under its own prefix, the way
// a browser keeps storage per origin.
type PrefixDB struct {
	inner  DB
	prefix []byte
}

// ChainPrefix returns the namespace of a chain ID, e.g. "pacific-1/".
func ChainPrefix(chainID string) []byte {
	return append([]byte(chainID), '/')
}

// NewPrefixDB scopes inner to prefix.
func NewPrefixDB(inner DB, prefix []byte) *PrefixDB {
	return &PrefixDB{inner: inner, prefix: append([]byte(nil), prefix...)}
}

func (p *PrefixDB) key(k []byte) []byte {
	full := make([]byte, 0, len(p.prefix)+len(k))
	return append(append(full, p.prefix...), k...)
}

func (p *PrefixDB) Get(k []byte) ([]byte, error) { return p.inner.Get(p.key(k)) }
func (p *PrefixDB) Put(k, v []byte) error        { return p.inner.Put(p.key(k), v) }
func (p *PrefixDB) Delete(k []byte) error        { return p.inner.Delete(p.key(k)) }
func (p *PrefixDB) Has(k []byte) (bool, error)   { return p.inner.Has(p.key(k)) }

// Close leaves inner open; its owner closes it.
func (p *PrefixDB) Close() error { return nil }
