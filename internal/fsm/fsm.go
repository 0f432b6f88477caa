// Package fsm holds explicit transition tables for status enums. Every
// mutating operation that changes a status consults a Table before writing.
package fsm

import "fmt"

type Table[S comparable] struct {
	name  string
	edges map[S]map[S]struct{}
}

func New[S comparable](name string, edges map[S][]S) *Table[S] {
	t := &Table[S]{name: name, edges: make(map[S]map[S]struct{}, len(edges))}
	for from, tos := range edges {
		set := make(map[S]struct{}, len(tos))
		for _, to := range tos {
			set[to] = struct{}{}
		}
		t.edges[from] = set
	}
	return t
}

func (t *Table[S]) Allowed(from, to S) bool {
	_, ok := t.edges[from][to]
	return ok
}

// Terminal reports whether no transition leaves s.
func (t *Table[S]) Terminal(s S) bool {
	return len(t.edges[s]) == 0
}

// Check returns a *TransitionError when from -> to is not in the table.
func (t *Table[S]) Check(from, to S) error {
	if t.Allowed(from, to) {
		return nil
	}
	return &TransitionError{Entity: t.name, From: fmt.Sprint(from), To: fmt.Sprint(to)}
}

type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: illegal transition %s -> %s", e.Entity, e.From, e.To)
}
