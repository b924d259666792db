package almanac

import (
	"context"
	"fmt"
	"os"
)

// YAMLProvider serves the almanac from a YAML file held in memory.
type YAMLProvider struct {
	entries map[MonthDay]Entry
}

// NewYAMLProvider loads path, or the bundled almanac when path is empty.
func NewYAMLProvider(path string) (*YAMLProvider, error) {
	var (
		entries []Entry
		err     error
	)

	if path == "" {
		entries, err = DefaultEntries()
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading almanac file: %w", err)
		}
		entries, err = ParseEntries(data)
	}
	if err != nil {
		return nil, err
	}

	return NewMemoryProvider(entries), nil
}

// NewMemoryProvider serves the given entries.
func NewMemoryProvider(entries []Entry) *YAMLProvider {
	p := &YAMLProvider{entries: make(map[MonthDay]Entry, len(entries))}
	for _, e := range entries {
		p.entries[e.Key()] = e
	}
	return p
}

func (p *YAMLProvider) DayInfo(ctx context.Context, md MonthDay) (DayInfo, error) {
	if err := ctx.Err(); err != nil {
		return DayInfo{}, err
	}
	e, ok := p.entries[md]
	if !ok {
		return Fallback(), nil
	}
	return e.Info(), nil
}

func (p *YAMLProvider) Events(ctx context.Context, md MonthDay) ([]HistoricalEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := p.entries[md]
	return append([]HistoricalEvent{}, e.Events...), nil
}

func (p *YAMLProvider) Close() error {
	return nil
}
