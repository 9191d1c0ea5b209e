package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena3d/directory"
	"arena3d/game"
)

type staticLister struct {
	listings []directory.Listing
	err      error
}

func (l staticLister) List(context.Context) ([]directory.Listing, error) {
	return l.listings, l.err
}

func newTestServer(t *testing.T, lister Lister) (*httptest.Server, *game.Manager) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	manager := game.NewManager(ctx, game.RoomConfig{Implementation: "base"})

	srv := httptest.NewServer(NewMux(manager, lister))
	t.Cleanup(srv.Close)
	return srv, manager
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestCreateAndListRooms(t *testing.T) {
	srv, manager := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/new?implementation=numbers", "text/plain", nil)
	require.NoError(t, err)
	id, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = manager.Get(string(id))
	require.NoError(t, err)

	resp, err = http.Post(srv.URL+"/new?implementation=chess", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/list")
	require.NoError(t, err)
	defer resp.Body.Close()
	var summaries []game.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, string(id), summaries[0].ID)
	assert.Equal(t, "numbers", summaries[0].Implementation)
}

func TestDirectoryListing(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/directory")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, "[]", string(body))

	lister := staticLister{listings: []directory.Listing{{Summary: game.Summary{ID: "r1"}, Host: "h1"}}}
	srv, _ = newTestServer(t, lister)
	resp, err = http.Get(srv.URL + "/directory")
	require.NoError(t, err)
	var listings []directory.Listing
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listings))
	resp.Body.Close()
	assert.Equal(t, lister.listings, listings)

	srv, _ = newTestServer(t, staticLister{err: errors.New("redis down")})
	resp, err = http.Get(srv.URL + "/directory")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSnapshotSchemaRoute(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/schema/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	var schema map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&schema))
	assert.Equal(t, "Room snapshot", schema["title"])
	assert.Contains(t, schema, "properties")
}

func TestConnectReceivesWelcome(t *testing.T) {
	srv, manager := newTestServer(t, nil)
	room, err := manager.Create("")
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/connect/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/connect/" + room.ID + "?name=Bob"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg game.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != game.MsgWelcome {
			continue
		}
		var welcome game.WelcomeData
		require.NoError(t, json.Unmarshal(msg.Data, &welcome))
		assert.Equal(t, room.ID, welcome.RoomID)
		assert.NotEmpty(t, welcome.PlayerID)
		break
	}
	require.Eventually(t, func() bool { return room.Summary().Players == 1 }, time.Second, 10*time.Millisecond)
}
