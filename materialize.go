package bsql

import (
	"fmt"

	"github.com/syssam/bsql/dialect/sql/schema"
)

// materialize zips result rows onto the selected columns and turns them
// into records of the base table. Columns of joined tables are stored
// under their qualified "table.column" name. The record definition is
// looked up in the client registry; tables without one yield generic
// records.
//
// Rows carrying a complete primary key are tracked by the session as
// initialized records; a row whose identity is already tracked resolves to
// the tracked instance. Other rows yield detached records.
func (s *Session) materialize(base *schema.Table, cols []*schema.Column, rs *ResultSet) ([]*Record, error) {
	def := s.client.definition(base.Name)
	recs := make([]*Record, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("bsql: %s row has %d values, expected %d", base.Name, len(row), len(cols))
		}
		values := make(map[string]any, len(cols))
		for i, c := range cols {
			v, err := c.Convert(row[i])
			if err != nil {
				return nil, err
			}
			name := c.Name
			if c.Table != base.Name {
				name = c.Table + "." + c.Name
			}
			values[name] = v
		}
		key, ok := identityKey(base, values)
		if !ok {
			recs = append(recs, newRecord(base, def, values, true))
			continue
		}
		if r, ok := s.tracker.lookup(base.Name, key); ok {
			recs = append(recs, r)
			continue
		}
		r := newRecord(base, def, values, true)
		s.tracker.add(r, key)
		recs = append(recs, r)
	}
	return recs, nil
}
