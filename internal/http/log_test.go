package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthEventsAreLogged(t *testing.T) {
	app, _ := newTestApp(t, nil)

	entries := captureLogs(t, func() {
		cl := newClient(t, app)
		cl.register("erin", "")
		cl.post("/logout", nil)
		cl.post("/login", url.Values{"username": {"erin"}, "password": {"nope-nope"}})
		cl.post("/login", url.Values{"username": {"erin"}, "password": {"Passw0rd!"}})
	})

	reg, ok := findAction(entries, "auth.register")
	require.True(t, ok)
	assert.Equal(t, "audit", reg.Kind)
	assert.Equal(t, "erin", reg.Fields["username"])

	_, ok = findAction(entries, "auth.logout")
	assert.True(t, ok)

	failed, ok := findAction(entries, "auth.login.fail")
	require.True(t, ok)
	assert.Equal(t, "security", failed.Kind)
	assert.Equal(t, "warn", failed.Level)

	success, ok := findAction(entries, "auth.login.success")
	require.True(t, ok)
	assert.NotEmpty(t, success.UserID)

	for _, e := range entries {
		for _, v := range e.Fields {
			assert.NotEqual(t, "Passw0rd!", v, "password leaked into %s", e.Action)
		}
	}
}

func TestLedgerEventsAreLogged(t *testing.T) {
	app, _ := newTestApp(t, nil)
	cl := newClient(t, app)
	cl.register("owner", "admin")
	pid := registerProduct(t, cl, "Americano", "3.00")

	entries := captureLogs(t, func() {
		applyTx(cl, pid, "inbound", 4)
		applyTx(cl, pid, "outbound", 9)
		cl.post("/edit_stock/"+pid, url.Values{"quantity": {"1"}})
	})

	apply, ok := findAction(entries, "ledger.apply")
	require.True(t, ok)
	assert.EqualValues(t, 4, apply.Fields["new_quantity"])

	short, ok := findAction(entries, "ledger.insufficient")
	require.True(t, ok)
	assert.EqualValues(t, 4, short.Fields["have"])

	edit, ok := findAction(entries, "stock.edit.unledgered")
	require.True(t, ok)
	assert.EqualValues(t, 4, edit.Fields["from"])
	assert.EqualValues(t, 1, edit.Fields["to"])
}

func TestAccessDenialsAreLogged(t *testing.T) {
	app, _ := newTestApp(t, nil)
	staff := newClient(t, app)
	staff.register("staff", "")
	anon := newClient(t, app)

	entries := captureLogs(t, func() {
		resp, _ := staff.get("/delete_stock/1")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp, _ = anon.get("/view_stock")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	denied, ok := findAction(entries, "access.denied")
	require.True(t, ok)
	assert.Equal(t, "staff", denied.Fields["role"])
	_, ok = findAction(entries, "access.unauthorized")
	assert.True(t, ok)
}
