package query

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type email struct{ value string }

func (e email) Value() string { return e.value }

type label struct{ Value string }

type level string

const (
	levelLow  level = "low"
	levelHigh level = "high"
)

func (l *level) UnmarshalText(text []byte) error {
	switch v := level(strings.ToLower(string(text))); v {
	case levelLow, levelHigh:
		*l = v
		return nil
	}
	return fmt.Errorf("unknown level %q", text)
}

type address struct {
	City string
	Zip  *string
}

type Audit struct {
	Revision uint16
}

type item struct {
	Audit

	ID        uuid.UUID
	Text      string
	Number    int
	Ratio     float64
	Price     decimal.Decimal
	Active    bool
	Email     email
	Tag       label
	Level     level
	CreatedAt time.Time
	Address   *address
	Payload   map[string]string
}

func (i item) Shout() string { return strings.ToUpper(i.Text) }

type counting struct {
	hits, misses, skipped atomic.Int64
}

func (c *counting) ResolutionCached(hit bool) {
	if hit {
		c.hits.Add(1)
		return
	}
	c.misses.Add(1)
}

func (c *counting) FilterSkipped(string) { c.skipped.Add(1) }
