package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, name := range []string{"types", "describe", "entities"} {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
	assert.Equal(t, "dev", root.Version)
	for _, flag := range []string{"config", "log-level", "format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing flag: %s", flag)
	}
}

// ---------- Command tests ----------

func TestTypesCommand(t *testing.T) {
	out, err := run(t, "", "types", "-f", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "OBJECT Book\n")
	assert.Contains(t, out, "INTERFACE Media\n")
	assert.Contains(t, out, "UNION _Entity\n")

	out, err = run(t, "", "types", "-f", "json")
	require.NoError(t, err)
	var rows []typeRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	entities := map[string]bool{}
	for _, r := range rows {
		if r.Entity {
			entities[r.Name] = true
		}
	}
	assert.Equal(t, map[string]bool{"Book": true, "Magazine": true, "Media": true}, entities)

	out, err = run(t, "", "types", "-f", "pretty")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Magazine")
}

func TestDescribeCommand(t *testing.T) {
	out, err := run(t, "", "describe", "Query", "-f", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "book(id: ID!): Book\n")
	assert.Contains(t, out, "search(text: String!, limit: Int! = 10): [Media]")

	_, err = run(t, "", "describe", "Boook")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	assert.Contains(t, errorMessage(err), `did you mean "Book"?`)
	assert.Equal(t, 3, exitCodeForError(err))

	_, err = run(t, "", "describe", "String")
	assert.Equal(t, 2, exitCodeForError(err))
}

func TestEntitiesCommand(t *testing.T) {
	input := `[
		{"__typename": "Book", "id": "1"},
		{"__typename": "Media", "id": "m1"},
		{"__typename": "Book", "id": "404"},
		{"__typename": "Ghost", "id": "1"}
	]`
	out, err := run(t, input, "entities", "-f", "json")
	require.NoError(t, err)

	var rows []entityRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 4)
	assert.Equal(t, "Book", rows[0].Type)
	assert.Equal(t, "Dune", rows[0].Data["title"])
	assert.Equal(t, "Magazine", rows[1].Type)
	assert.Equal(t, float64(761), rows[1].Data["issue"])
	assert.Nil(t, rows[2].Data)
	assert.Empty(t, rows[2].Errors)
	assert.Equal(t, []string{`unknown entity type "Ghost"`}, rows[3].Errors)

	out, err = run(t, input, "entities", "-f", "text")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"0 Book id=1 isbn=9780441013593 title=Dune year=1965",
		"1 Magazine id=m1 issue=761 title=Locus",
		"2 Book null",
		`3 Ghost error: unknown entity type "Ghost"`,
	}, "\n")+"\n", out)

	_, err = run(t, input, "entities", "--fail-on-error")
	require.Error(t, err)
	assert.Equal(t, 3, exitCodeForError(err))
}

func TestEntitiesCommandInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reps.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"representations": [{"__typename": "Book", "isbn": "9780141439587"}]}`), 0o600))
	out, err := run(t, "", "entities", path, "-f", "text")
	require.NoError(t, err)
	assert.Equal(t, "0 Book id=3 isbn=9780141439587 title=Emma year=1815\n", out)

	for _, input := range []string{`not json`, `{"__typename": "Book"}`, `[{"id": "1"}]`} {
		_, err := run(t, input, "entities")
		require.Error(t, err, input)
		assert.Equal(t, 2, exitCodeForError(err), input)
	}

	_, err = run(t, "", "entities", filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, 2, exitCodeForError(err))
}

func TestRootFlags(t *testing.T) {
	_, err := run(t, "", "types", "-f", "yaml")
	require.Error(t, err)
	assert.Equal(t, 2, exitCodeForError(err))

	_, err = run(t, "", "types", "--log-level", "chatty")
	assert.Equal(t, 2, exitCodeForError(err))

	_, err = run(t, "", "types", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, 2, exitCodeForError(err))

	path := filepath.Join(t.TempDir(), "typegraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_parallelism: 2\nlog_level: debug\n"), 0o600))
	_, err = run(t, "", "types", "--config", path, "-f", "text")
	assert.NoError(t, err)
}

// ---------- Helper function tests ----------

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"json", "TEXT", "Pretty"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestFindClosest(t *testing.T) {
	candidates := []string{"Author", "Book", "Magazine"}
	assert.Equal(t, "Book", findClosest("book", candidates))
	assert.Equal(t, "Magazine", findClosest("Magazin", candidates))
	assert.Equal(t, "", findClosest("Completely Unrelated", candidates))
}

func TestExitCodeForError(t *testing.T) {
	assert.Equal(t, 1, exitCodeForError(assert.AnError))
	assert.Equal(t, 4, exitCodeForError(errbuilder.New().WithCode(errbuilder.CodeInternal).WithMsg("x")))
}
