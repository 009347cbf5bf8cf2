package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesus88/turb-tax/internal/testutil"
)

// cliEnv runs commands against one database with a fixed clock and trace id.
type cliEnv struct {
	db   string
	opts *RootOptions
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	for _, k := range []string{"TURBTAX_CONFIG", "TURBTAX_DRIVER", "TURBTAX_DB", "TURBTAX_DSN", "TURBTAX_CURRENCY", "TURBTAX_COMPOUNDING"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return &cliEnv{
		db: filepath.Join(dir, "turbtax.db"),
		opts: &RootOptions{
			Clock:          testutil.NewCalendarAt("2024-06-15"),
			TraceGenerator: testutil.NewFixedTraceGenerator("trace-test"),
		},
	}
}

type cliResult struct {
	stdout string
	stderr string
	code   int
}

func (e *cliEnv) runWithInput(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--db", e.db}, args...)
	code := execute(e.opts, full, strings.NewReader(stdin), &stdout, &stderr)
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func (e *cliEnv) run(t *testing.T, args ...string) cliResult {
	t.Helper()
	return e.runWithInput(t, "", args...)
}

// mustRun runs a command that is expected to succeed.
func (e *cliEnv) mustRun(t *testing.T, args ...string) cliResult {
	t.Helper()
	res := e.run(t, args...)
	require.Equal(t, ExitSuccess, res.code, "stdout: %s\nstderr: %s", res.stdout, res.stderr)
	return res
}

func decodeResponse(t *testing.T, out string) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func addRent(t *testing.T, e *cliEnv) {
	t.Helper()
	e.mustRun(t, "add", "rent", "--amount=-1200", "--date=2024-01-01")
	e.mustRun(t, "add", "rent", "--amount=-1200", "--date=2024-02-01")
}

func TestView_RentJSONGolden(t *testing.T) {
	e := newCLIEnv(t)
	addRent(t, e)

	res := e.mustRun(t, "--format", "json", "view", "rent")
	newGoldie(t).Assert(t, "view_rent_json", []byte(res.stdout))
}

func TestView_UnknownBookJSONGolden(t *testing.T) {
	e := newCLIEnv(t)

	res := e.run(t, "--format", "json", "view", "ghost")
	assert.Equal(t, ExitFailure, res.code)
	newGoldie(t).Assert(t, "view_unknown_json", []byte(res.stdout))
}

func TestView_UnknownBookText(t *testing.T) {
	e := newCLIEnv(t)

	res := e.run(t, "view", "ghost")
	assert.Equal(t, ExitFailure, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, `Error [E404]: book "ghost" not found`)
}

func TestView_TextMaxAndDetails(t *testing.T) {
	e := newCLIEnv(t)
	addRent(t, e)
	e.mustRun(t, "add", "rent", "--amount=-1200", "--date=2024-03-01", "--desc", "march")

	res := e.mustRun(t, "view", "rent", "--max", "1", "--details")
	assert.Contains(t, res.stdout, "turb tax: rent")
	assert.Contains(t, res.stdout, "balance:     -$3,600.00")
	assert.Contains(t, res.stdout, "(2 earlier)")
	assert.Contains(t, res.stdout, "march")
	assert.NotContains(t, res.stdout, "2024-01-01")
}

func TestView_Markdown(t *testing.T) {
	e := newCLIEnv(t)
	addRent(t, e)

	res := e.mustRun(t, "--format", "markdown", "view", "rent")
	assert.True(t, strings.HasPrefix(res.stdout, "# rent\n"))
	assert.Contains(t, res.stdout, "| 2 | 2024-02-01 | - | -$1,200.00 | -$2,400.00 |")
}

func TestView_Pretty(t *testing.T) {
	e := newCLIEnv(t)
	addRent(t, e)

	res := e.mustRun(t, "view", "rent", "--pretty")
	assert.Contains(t, res.stdout, "rent")
	assert.Contains(t, res.stdout, "-$2,400.00")
}

func TestAdd_TextShowsBalanceAndTail(t *testing.T) {
	e := newCLIEnv(t)
	for i := 0; i < 6; i++ {
		e.mustRun(t, "add", "cash", "--amount=10")
	}

	res := e.mustRun(t, "add", "cash", "5", "--desc", "coins")
	assert.True(t, strings.HasPrefix(res.stdout, "Line added. New balance: $65.00\n"))
	assert.Contains(t, res.stdout, "(2 earlier)")
	assert.Contains(t, res.stdout, "coins")
	assert.Contains(t, res.stdout, "2024-06-15", "date defaults to today")
}

func TestAdd_JSON(t *testing.T) {
	e := newCLIEnv(t)

	res := e.mustRun(t, "--format", "json", "add", "rent", "--amount=-1200", "--date=2024-01-01", "-p", "january")
	resp := decodeResponse(t, res.stdout)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "trace-test", resp["trace_id"])

	data := resp["data"].(map[string]any)
	assert.Equal(t, "-1200", data["balance"])
	entry := data["entry"].(map[string]any)
	assert.Equal(t, float64(1), entry["id"])
	assert.Equal(t, "january", entry["description"])
	assert.Equal(t, "2024-01-01", entry["date"])
}

func TestAdd_Errors(t *testing.T) {
	e := newCLIEnv(t)

	res := e.run(t, "add", "rent", "--amount=abc")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "E422")

	res = e.run(t, "add", "rent", "--amount=1", "--date=2024-13-01")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "invalid date")

	res = e.run(t, "add", "rent")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "amount is required")

	res = e.run(t, "add", "rent", "5", "--amount=6")
	assert.Equal(t, ExitCommandError, res.code)

	// Nothing was written.
	res = e.run(t, "view", "rent")
	assert.Equal(t, ExitFailure, res.code)
}

func TestEdit_Book(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "add", "savings", "1000", "--date=2024-01-01")

	res := e.mustRun(t, "edit", "savings", "--desc", "rainy day", "--apr", "0.045")
	assert.Contains(t, res.stdout, "Book updated.")
	assert.Contains(t, res.stdout, "description: rainy day")
	assert.Contains(t, res.stdout, "apr:         4.5%")

	res = e.mustRun(t, "--format", "json", "info", "savings")
	book := decodeResponse(t, res.stdout)["data"].(map[string]any)["book"].(map[string]any)
	assert.Equal(t, "rainy day", book["description"])
	assert.Equal(t, "0.045", book["apr"])

	e.mustRun(t, "edit", "savings", "--no-desc", "--no-apr")
	res = e.mustRun(t, "--format", "json", "info", "savings")
	book = decodeResponse(t, res.stdout)["data"].(map[string]any)["book"].(map[string]any)
	assert.Nil(t, book["description"])
	assert.Nil(t, book["apr"])
}

func TestEdit_Entry(t *testing.T) {
	e := newCLIEnv(t)
	addRent(t, e)

	res := e.mustRun(t, "edit", "rent", "-i", "2", "--amount=-1250", "--desc", "raise")
	assert.True(t, strings.HasPrefix(res.stdout, "Line 2 updated.\n"))
	assert.Contains(t, res.stdout, "-$2,450.00")

	res = e.mustRun(t, "--format", "json", "view", "rent")
	lines := decodeResponse(t, res.stdout)["data"].(map[string]any)["lines"].([]any)
	second := lines[1].(map[string]any)
	assert.Equal(t, "-1250", second["amount"])
	assert.Equal(t, "raise", second["description"])
	assert.Equal(t, "2024-02-01", second["date"], "date unchanged")
}

func TestEdit_Errors(t *testing.T) {
	e := newCLIEnv(t)
	addRent(t, e)
	e.mustRun(t, "add", "food", "--amount=-20", "--date=2024-01-01")

	res := e.run(t, "edit", "rent")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "nothing to edit")

	res = e.run(t, "edit", "rent", "--amount=5")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "need --index")

	res = e.run(t, "edit", "rent", "-i", "99", "--amount=5")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "E404")

	// Entry 3 belongs to "food".
	res = e.run(t, "edit", "rent", "-i", "3", "--amount=5")
	assert.Equal(t, ExitFailure, res.code)

	res = e.run(t, "edit", "rent", "--apr", "-0.1")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "E422")
}

func TestEdit_BookCreatesUnknownName(t *testing.T) {
	e := newCLIEnv(t)

	res := e.mustRun(t, "edit", "savings", "--apr", "0.12")
	assert.Contains(t, res.stdout, "Book updated.")

	res = e.mustRun(t, "--format", "json", "info", "savings")
	book := decodeResponse(t, res.stdout)["data"].(map[string]any)["book"].(map[string]any)
	assert.Equal(t, "savings", book["name"])
	assert.Equal(t, "0.12", book["apr"])

	e.mustRun(t, "add", "savings", "--amount=1000", "--date=2024-01-01")
	e.mustRun(t, "interest", "savings", "--date", "2024-01-31")
}

func TestEdit_InvalidAPRLeavesStateUnchanged(t *testing.T) {
	e := newCLIEnv(t)
	addRent(t, e)

	res := e.run(t, "edit", "rent", "-i", "1", "--amount=5", "--apr", "abc")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "E422")

	res = e.run(t, "edit", "rent", "--desc", "flat", "--apr", "abc")
	assert.Equal(t, ExitCommandError, res.code)

	res = e.run(t, "edit", "ghost", "--desc", "x", "--apr", "abc")
	assert.Equal(t, ExitCommandError, res.code)

	res = e.mustRun(t, "--format", "json", "view", "rent")
	data := decodeResponse(t, res.stdout)["data"].(map[string]any)
	lines := data["lines"].([]any)
	require.Len(t, lines, 2)
	assert.Equal(t, "-1200", lines[0].(map[string]any)["amount"])
	assert.Nil(t, data["book"].(map[string]any)["description"])

	res = e.run(t, "info", "ghost")
	assert.Equal(t, ExitFailure, res.code)
}

func TestInterest_JSONGolden(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "add", "savings", "--amount=1000", "--date=2024-01-01")
	e.mustRun(t, "edit", "savings", "--apr", "0.12")

	res := e.mustRun(t, "--format", "json", "interest", "savings", "--date", "2024-01-31")
	newGoldie(t).Assert(t, "interest_savings_json", []byte(res.stdout))

	res = e.mustRun(t, "--format", "json", "view", "savings")
	lines := decodeResponse(t, res.stdout)["data"].(map[string]any)["lines"].([]any)
	require.Len(t, lines, 2)
	assert.Equal(t, "interest earned", lines[1].(map[string]any)["description"])
}

func TestInterest_Preconditions(t *testing.T) {
	e := newCLIEnv(t)

	res := e.run(t, "interest", "savings")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "E412")
	assert.Contains(t, res.stderr, "no entries")

	e.mustRun(t, "add", "savings", "100")
	res = e.run(t, "interest", "savings")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "no APR configured")

	e.mustRun(t, "edit", "savings", "--apr", "0.12")
	res = e.run(t, "interest", "savings", "--compound", "0")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "E422")

	res = e.mustRun(t, "interest", "savings", "-c", "4")
	assert.True(t, strings.HasPrefix(res.stdout, "Interest added: $3.00. New balance: $103.00\n"))
}

func TestDelete(t *testing.T) {
	e := newCLIEnv(t)
	addRent(t, e)
	e.mustRun(t, "add", "food", "--amount=-20", "--date=2024-01-01")

	res := e.mustRun(t, "delete", "rent", "99")
	assert.Equal(t, "Failed to delete line 99: id not found.\n", res.stdout)

	res = e.mustRun(t, "delete", "rent", "3")
	assert.Equal(t, "Failed to delete line 3: id not found.\n", res.stdout, "id of another book")

	res = e.mustRun(t, "delete", "rent", "1")
	assert.True(t, strings.HasPrefix(res.stdout, "Line removed. New balance: -$1,200.00\n"))

	res = e.mustRun(t, "--format", "json", "delete", "rent", "2")
	data := decodeResponse(t, res.stdout)["data"].(map[string]any)
	assert.Equal(t, true, data["removed"])
	assert.Nil(t, data["balance"], "book has no entries left")

	res = e.run(t, "delete", "rent", "x")
	assert.Equal(t, ExitCommandError, res.code)
}

func TestClear(t *testing.T) {
	e := newCLIEnv(t)
	addRent(t, e)

	res := e.run(t, "clear", "rent")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "did not --confirm")

	res = e.runWithInput(t, "no\n", "clear", "rent", "--confirm")
	assert.Equal(t, ExitSuccess, res.code)
	assert.Equal(t, "Deletion canceled.\n", res.stdout)
	assert.Contains(t, res.stderr, `Clear book "rent"? Enter to continue: `)

	res = e.runWithInput(t, "", "clear", "rent", "--confirm")
	assert.Equal(t, "Deletion canceled.\n", res.stdout, "EOF cancels")

	res = e.runWithInput(t, "\n", "clear", "rent", "--confirm")
	assert.Equal(t, ExitSuccess, res.code)
	assert.Equal(t, "All lines cleared (2 removed).\n", res.stdout)

	res = e.run(t, "view", "rent")
	assert.Equal(t, ExitFailure, res.code)

	res = e.mustRun(t, "--format", "json", "add", "rent", "--amount=-1")
	entry := decodeResponse(t, res.stdout)["data"].(map[string]any)["entry"].(map[string]any)
	assert.Equal(t, float64(1), entry["id"], "ids restart after clear")

	res = e.mustRun(t, "clear", "rent", "--confirm", "--yes")
	assert.Equal(t, "All lines cleared (1 removed).\n", res.stdout)

	res = e.run(t, "clear", "rent", "--confirm", "--yes")
	assert.Equal(t, ExitFailure, res.code)
}

func TestInfo_Text(t *testing.T) {
	e := newCLIEnv(t)
	addRent(t, e)

	res := e.mustRun(t, "info", "rent")
	assert.Contains(t, res.stdout, "book:        rent")
	assert.Contains(t, res.stdout, "balance:     -$2,400.00")
	assert.Contains(t, res.stdout, "entries:     2")
	assert.Contains(t, res.stdout, commandHint)

	res = e.mustRun(t, "--format", "markdown", "info", "rent")
	assert.Contains(t, res.stdout, "- **Balance:** -$2,400.00")
}

func TestExecute_UsageErrors(t *testing.T) {
	e := newCLIEnv(t)

	res := e.run(t, "frobnicate")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "Error:")

	res = e.run(t, "view")
	assert.Equal(t, ExitCommandError, res.code)

	res = e.run(t, "--format", "xml", "view", "rent")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "invalid format")
}

func TestConfig_FileAndCurrency(t *testing.T) {
	e := newCLIEnv(t)
	cfgPath := filepath.Join(filepath.Dir(e.db), "turbtax.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("currency: EUR\nformat: json\n"), 0644))

	res := e.mustRun(t, "--config", cfgPath, "add", "rent", "--amount=-5")
	resp := decodeResponse(t, res.stdout)
	assert.Equal(t, "ok", resp["status"], "format comes from the config file")

	res = e.mustRun(t, "--config", cfgPath, "--format", "text", "info", "rent")
	assert.Contains(t, res.stdout, "€")

	bad := filepath.Join(filepath.Dir(e.db), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("currency: [\n"), 0644))
	res = e.run(t, "--config", bad, "info", "rent")
	assert.Equal(t, ExitCommandError, res.code)
}
