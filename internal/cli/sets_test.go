package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/phrazzld/memorygame/internal/domain"
	"github.com/phrazzld/memorygame/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetsList(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	out, _, err := f.run("", "sets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No card sets yet")

	set := f.createSet("Capitals", "France", "Paris", "Peru", "Lima")

	out, _, err = f.run("", "sets", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, set.ID)
	assert.Contains(t, out, "Capitals")

	out, _, err = f.run("", "sets", "list", "--json")
	require.NoError(t, err)
	var sets []domain.CardSet
	require.NoError(t, json.Unmarshal([]byte(out), &sets))
	require.Len(t, sets, 1)
	assert.Len(t, sets[0].Cards, 2)
}

func TestSetsShow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.createSet("Empty")
	f.createSet("Capitals", "France", "Paris")

	out, _, err := f.run("", "sets", "show", "capitals")
	require.NoError(t, err)
	assert.Contains(t, out, "Capitals (")
	assert.Contains(t, out, "Best score:    0%")
	assert.Contains(t, out, "1 card:")
	assert.Contains(t, out, "France")
	assert.Contains(t, out, "Paris")

	out, _, err = f.run("", "sets", "show", "Empty")
	require.NoError(t, err)
	assert.Contains(t, out, "No cards yet.")

	_, _, err = f.run("", "sets", "show", "Missing")
	assert.ErrorIs(t, err, service.ErrCardSetNotFound)
}

func TestSetsCreateAndRename(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	out, _, err := f.run("", "sets", "create", "Spanish", "verbs")
	require.NoError(t, err)
	assert.Contains(t, out, "Card set created: Spanish verbs")

	sets := f.svc.CardSets.List(ctx)
	require.Len(t, sets, 1)
	assert.Equal(t, "Spanish verbs", sets[0].Name)

	out, _, err = f.run("", "sets", "rename", "spanish verbs", "Irregular", "verbs")
	require.NoError(t, err)
	assert.Contains(t, out, "Spanish verbs -> Irregular verbs")

	set, err := f.svc.CardSets.Get(ctx, sets[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Irregular verbs", set.Name)

	_, _, err = f.run("", "sets", "create", "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSetsDelete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		stdin   string
		args    []string
		deleted bool
		output  string
	}{
		{name: "confirmed", stdin: "y\n", args: nil, deleted: true, output: "Card set deleted: Capitals"},
		{name: "declined", stdin: "n\n", args: nil, deleted: false, output: "Cancelled."},
		{name: "no input", stdin: "", args: nil, deleted: false, output: "Cancelled."},
		{name: "forced", stdin: "", args: []string{"--force"}, deleted: true, output: "Card set deleted: Capitals"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			set := f.createSet("Capitals", "France", "Paris")

			args := append([]string{"sets", "delete", set.ID}, tt.args...)
			out, _, err := f.run(tt.stdin, args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.output)

			_, err = f.svc.CardSets.Get(context.Background(), set.ID)
			if tt.deleted {
				assert.ErrorIs(t, err, service.ErrCardSetNotFound)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCards(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	set := f.createSet("Capitals")

	out, _, err := f.run("", "cards", "add", "Capitals", "--front", "France", "--back", "Paris")
	require.NoError(t, err)
	assert.Contains(t, out, "Card added to Capitals")

	got, err := f.svc.CardSets.Get(ctx, set.ID)
	require.NoError(t, err)
	require.Len(t, got.Cards, 1)
	assert.Equal(t, "France", got.Cards[0].Front)

	_, _, err = f.run("", "cards", "add", "Capitals", "--front", "Spain")
	assert.Error(t, err, "--back is required")

	_, _, err = f.run("", "cards", "add", "Capitals", "--front", "Spain", "--back", "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	out, _, err = f.run("", "cards", "rm", "Capitals", got.Cards[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Card removed from Capitals")

	got, err = f.svc.CardSets.Get(ctx, set.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Cards)

	_, _, err = f.run("", "cards", "remove", "Capitals", "missing")
	assert.ErrorIs(t, err, service.ErrCardNotFound)
}
