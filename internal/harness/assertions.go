package harness

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/engine"
	"github.com/roach88/xmsync/internal/store"
	"github.com/roach88/xmsync/internal/value"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Entity   string
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s (%s)\n", e.Type, e.Entity)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides journal access for journal_count assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		plan, ok := planFor(result.Run, assertion.Entity)
		switch {
		case assertion.Type == AssertJournalCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: journal_count requires journal context", i)
			} else {
				err = assertJournalCount(actx.Ctx, actx.Store, result.Run, assertion)
			}
		case !ok:
			err = fmt.Errorf("assertion[%d]: entity %q was not planned", i, assertion.Entity)
		case assertion.Type == AssertFields:
			err = assertFields(plan, assertion)
		case assertion.Type == AssertEmbed:
			err = assertEmbed(plan, assertion)
		case assertion.Type == AssertRecord:
			err = assertRecord(plan, assertion)
		case assertion.Type == AssertRecordCount:
			err = assertRecordCount(plan, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func planFor(run *engine.Run, name string) (*engine.Plan, bool) {
	if run == nil {
		return nil, false
	}
	return run.Plan(catalog.Entity(name))
}

// assertFields checks the sync field list, including order.
func assertFields(plan *engine.Plan, a Assertion) error {
	if slices.Equal(plan.Options.Fields, a.Fields) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFields,
		Entity:   a.Entity,
		Expected: fmt.Sprintf("%v", a.Fields),
		Actual:   fmt.Sprintf("%v", plan.Options.Fields),
	}
}

// assertEmbed checks the comma-joined embed query.
func assertEmbed(plan *engine.Plan, a Assertion) error {
	actual := strings.Join(plan.Options.Embed, ",")
	if actual == a.Embed {
		return nil
	}
	return &AssertionError{
		Type:     AssertEmbed,
		Entity:   a.Entity,
		Expected: fmt.Sprintf("%q", a.Embed),
		Actual:   fmt.Sprintf("%q", actual),
	}
}

// assertRecord checks that the selected record contains every expected key
// with an equal value, and none of the absent keys. Extra keys are ignored.
func assertRecord(plan *engine.Plan, a Assertion) error {
	if a.Index >= len(plan.Records) {
		return &AssertionError{
			Type:     AssertRecord,
			Entity:   a.Entity,
			Expected: fmt.Sprintf("record at index %d", a.Index),
			Actual:   fmt.Sprintf("%d records", len(plan.Records)),
		}
	}
	rec := plan.Records[a.Index]

	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		expected, err := value.FromAny(a.Expect[key])
		if err != nil {
			return fmt.Errorf("record[%d].%s: %w", a.Index, key, err)
		}
		actual, exists := rec[key]
		if !exists || !value.Equal(expected, actual) {
			return &AssertionError{
				Type:     AssertRecord,
				Entity:   a.Entity,
				Expected: fmt.Sprintf("record[%d].%s = %s", a.Index, key, render(expected)),
				Actual:   fmt.Sprintf("record[%d].%s = %s", a.Index, key, renderMissing(actual, exists)),
			}
		}
	}

	for _, key := range a.Absent {
		if actual, exists := rec[key]; exists {
			return &AssertionError{
				Type:     AssertRecord,
				Entity:   a.Entity,
				Expected: fmt.Sprintf("record[%d].%s absent", a.Index, key),
				Actual:   fmt.Sprintf("record[%d].%s = %s", a.Index, key, render(actual)),
			}
		}
	}
	return nil
}

func assertRecordCount(plan *engine.Plan, a Assertion) error {
	if len(plan.Records) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRecordCount,
		Entity:   a.Entity,
		Expected: fmt.Sprintf("%d records", a.Count),
		Actual:   fmt.Sprintf("%d records", len(plan.Records)),
	}
}

// assertJournalCount checks the number of records journaled for the entity.
func assertJournalCount(ctx context.Context, st *store.Store, run *engine.Run, a Assertion) error {
	if run == nil {
		return fmt.Errorf("journal_count: no run")
	}
	records, err := st.ReadRecords(ctx, run.ID, catalog.Entity(a.Entity))
	if err != nil {
		return fmt.Errorf("journal_count: %w", err)
	}
	if len(records) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertJournalCount,
		Entity:   a.Entity,
		Expected: fmt.Sprintf("%d journaled records", a.Count),
		Actual:   fmt.Sprintf("%d journaled records", len(records)),
	}
}

func render(v value.Value) string {
	data, err := value.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func renderMissing(v value.Value, exists bool) string {
	if !exists {
		return "<missing>"
	}
	return render(v)
}
