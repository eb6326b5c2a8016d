package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/finance/config"
	"github.com/rustyeddy/finance/ledger"
	"github.com/rustyeddy/finance/portfolio"
	"github.com/rustyeddy/finance/service"
	"github.com/rustyeddy/finance/watchlist"
)

type harness struct {
	dataDir string
	cfgPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvDataDir, "")

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "AAPL":
			fmt.Fprint(w, `{"c": 120, "pc": 100}`)
		case "MSFT":
			fmt.Fprint(w, `{"c": 400, "pc": 400}`)
		default:
			fmt.Fprint(w, "bad gateway")
		}
	}))
	t.Cleanup(provider.Close)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.App.DataDir = filepath.Join(dir, "data")
	cfg.Quote.BaseURL = provider.URL
	cfg.Quote.APIKey = "k"
	cfg.Quote.RateLimit = 0
	path := filepath.Join(dir, "finance.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	return &harness{dataDir: cfg.App.DataDir, cfgPath: path}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer

	cmd := newRootCmd(&RootConfig{logOut: &logs})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", h.cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestTxCommands(t *testing.T) {
	h := newHarness(t)

	h.mustRun(t, "tx", "add", "Salary", "3000", "--date", "2024-07-31")
	h.mustRun(t, "tx", "add", "Groceries", "--date", "2024-08-01", "--", "-52.37")

	var txs []ledger.Transaction
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "--json", "tx", "list")), &txs))
	require.Len(t, txs, 2)
	assert.Equal(t, "Salary", txs[0].Description)
	assert.Equal(t, -52.37, txs[1].Amount)

	out := h.mustRun(t, "tx", "list")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "BALANCE")

	h.mustRun(t, "tx", "delete", fmt.Sprint(txs[0].ID))
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "--json", "tx", "list")), &txs))
	assert.Len(t, txs, 1)
}

func TestTxAddBadAmount(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "tx", "add", "Lunch", "twelve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad amount")
}

func TestWatchCommands(t *testing.T) {
	h := newHarness(t)

	h.mustRun(t, "watch", "add", "msft", "aapl", "AAPL")

	var entries []watchlist.Entry
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "--json", "watch", "list")), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "AAPL", entries[0].Symbol)
	assert.Equal(t, "MSFT", entries[1].Symbol)

	out := h.mustRun(t, "watch", "quotes")
	assert.Contains(t, out, "+20.00%")

	h.mustRun(t, "watch", "delete", fmt.Sprint(entries[0].ID))
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "--json", "watch", "list")), &entries))
	assert.Len(t, entries, 1)
}

func TestQuoteCommandPolicies(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "quote", "aapl", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOPE")

	var data service.StockData
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "--json", "quote", "aapl", "nope", "--policy", "best-effort")), &data))
	require.Len(t, data.Quotes, 1)
	assert.Equal(t, "AAPL", data.Quotes[0].Symbol)
	assert.Contains(t, data.Failures, "NOPE")

	_, err = h.run(t, "quote", "aapl", "--policy", "whatever")
	assert.Error(t, err)
}

func TestPortfolioCommands(t *testing.T) {
	h := newHarness(t)

	h.mustRun(t, "portfolio", "add", "aapl", "10", "100", "--date", "2023-01-01")
	h.mustRun(t, "portfolio", "add", "AAPL", "5", "130", "--date", "2024-01-01")

	var entries []portfolio.Entry
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "--json", "portfolio", "list")), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "2023-01-01", entries[0].PurchaseDate)

	var v service.PortfolioValuation
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "--json", "portfolio", "value")), &v))
	assert.InDelta(t, 1800, v.Value, 1e-9)
	assert.InDelta(t, 150, v.Gain, 1e-9)

	out := h.mustRun(t, "portfolio", "value")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "$1,800.00")

	h.mustRun(t, "portfolio", "add", "ghost", "1", "1")
	_, err := h.run(t, "portfolio", "value")
	assert.Error(t, err)

	out = h.mustRun(t, "portfolio", "value", "--best-effort")
	assert.Contains(t, out, "GHOST not priced")

	h.mustRun(t, "portfolio", "delete", fmt.Sprint(entries[0].ID))
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "--json", "portfolio", "list")), &entries))
	assert.Len(t, entries, 2)
}

func TestDataDirFlagOverridesConfig(t *testing.T) {
	h := newHarness(t)
	other := filepath.Join(t.TempDir(), "elsewhere")

	h.mustRun(t, "--data-dir", other, "watch", "add", "spy")

	_, err := os.Stat(filepath.Join(other, "finance.db"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(h.dataDir, "finance.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "new.yaml")

	out := h.mustRun(t, "config", "init", "-o", path)
	assert.Contains(t, out, "Created default configuration")

	out = h.mustRun(t, "config", "validate", "-f", path)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "api key not set")

	out = h.mustRun(t, "config", "show")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, `"k"`)
}

func TestBadConfigFile(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.cfgPath, []byte("quote:\n  rate_limit: -5\n"), 0600))

	_, err := h.run(t, "tx", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit")
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun(t, "version"), "finance version")
}
