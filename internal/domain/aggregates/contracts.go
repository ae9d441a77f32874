package aggregates

// Contract names an aggregate and the tables its write transactions touch.
// No other component writes those tables outside the aggregate.
type Contract struct {
	Name   string
	Writes []string
	Notes  string
}

type Aggregate interface {
	Contract() Contract
}

// Owns reports whether table is written by the aggregate.
func (c Contract) Owns(table string) bool {
	for _, t := range c.Writes {
		if t == table {
			return true
		}
	}
	return false
}
