package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/berserkgame/berserk-server-go/internal/protocol"
	"github.com/berserkgame/berserk-server-go/internal/repository"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHTTPEndpoints(t *testing.T) {
	env := startServer(t, testConfig())
	h := env.server.Handler()

	c := dial(t, env.server.Addr())
	c.hello("Alice")
	c.send(protocol.TypeCreateMatch, nil)
	created := decode[protocol.MatchCreated](t, c.expect(protocol.TypeMatchCreated))

	t.Run("healthz", func(t *testing.T) {
		rec := get(t, h, "/healthz")
		require.Equal(t, http.StatusOK, rec.Code)
		var health Health
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
		assert.Equal(t, StatusServing, health.Status)
		assert.Equal(t, "test", health.Version)
		assert.Equal(t, 1, health.Sessions)
		assert.Equal(t, 1, health.Matches)
	})

	t.Run("matches", func(t *testing.T) {
		rec := get(t, h, "/matches")
		require.Equal(t, http.StatusOK, rec.Code)
		var list []protocol.MatchInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, created.MatchID, list[0].MatchID)
		assert.Equal(t, "Alice", list[0].HostName)

		rec = get(t, h, "/matches/"+created.MatchID)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = get(t, h, "/matches/ZZZZZZ")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("results", func(t *testing.T) {
		require.NoError(t, env.store.SaveResult(context.Background(), repository.Result{
			MatchID: "DONE01",
			Player1: "Alice",
			Player2: "Bob",
			Winner:  1,
			Reason:  "victory",
		}))

		rec := get(t, h, "/matches/done01")
		require.Equal(t, http.StatusOK, rec.Code)
		var res resultJSON
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "DONE01", res.MatchID)
		assert.Equal(t, 1, res.Winner)

		rec = get(t, h, "/results?limit=5")
		require.Equal(t, http.StatusOK, rec.Code)
		var list []resultJSON
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.Len(t, list, 1)

		assert.Equal(t, http.StatusBadRequest, get(t, h, "/results?limit=x").Code)

		rec = get(t, h, "/players/Alice/record")
		require.Equal(t, http.StatusOK, rec.Code)
		var record map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
		assert.EqualValues(t, 1, record["wins"])
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/matches", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestWebSocketGateway(t *testing.T) {
	cfg := testConfig()
	cfg.WebSocket.Enabled = true
	env := startServer(t, cfg)
	require.NotNil(t, env.server.HTTPAddr())

	url := "ws://" + env.server.HTTPAddr().String() + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	hello, err := protocol.New(protocol.TypeHello, "", 1, protocol.Hello{PlayerName: "Web"})
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(hello))

	readWS := func(typ protocol.MessageType) protocol.Message {
		t.Helper()
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
		for {
			var msg protocol.Message
			require.NoError(t, ws.ReadJSON(&msg))
			if msg.Type == typ {
				return msg
			}
		}
	}
	readWS(protocol.TypeWelcome)

	// a TCP player and a WebSocket player share the lobby
	tcp := dial(t, env.server.Addr())
	tcp.hello("Tcp")
	tcp.send(protocol.TypeCreateMatch, nil)
	created := decode[protocol.MatchCreated](t, tcp.expect(protocol.TypeMatchCreated))

	join, err := protocol.New(protocol.TypeJoinMatch, created.MatchID, 2, nil)
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(join))
	joined := decode[protocol.MatchJoined](t, readWS(protocol.TypeMatchJoined))
	assert.Equal(t, 2, joined.Player)

	other := decode[protocol.PlayerJoined](t, tcp.expect(protocol.TypePlayerJoined))
	assert.Equal(t, "Web", other.PlayerName)

	t.Run("origin check", func(t *testing.T) {
		cfg := testConfig()
		cfg.WebSocket.AllowedOrigins = []string{"https://berserk.example"}
		s := New(cfg, nil)
		check := s.upgrader().CheckOrigin

		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.Header.Set("Origin", "https://evil.example")
		assert.False(t, check(r))
		r.Header.Set("Origin", "https://berserk.example")
		assert.True(t, check(r))
	})
}

func TestAdminHealth(t *testing.T) {
	cfg := testConfig()
	cfg.Admin.Enabled = true
	env := startServer(t, cfg)
	require.NotNil(t, env.server.AdminAddr())

	conn, err := grpc.NewClient(env.server.AdminAddr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, service := range []string{"", HealthServiceName} {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	}

	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

// writeTestCert writes a self-signed certificate for 127.0.0.1.
func writeTestCert(t *testing.T) (certFile, keyFile string, pool *x509.CertPool) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "berserk-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		IsCA:         true,

		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certFile = filepath.Join(dir, "server.crt")
	keyFile = filepath.Join(dir, "server.key")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	pool = x509.NewCertPool()
	pool.AddCert(cert)
	return certFile, keyFile, pool
}

func TestTLS(t *testing.T) {
	certFile, keyFile, pool := writeTestCert(t)
	cfg := testConfig()
	cfg.TLS.CertFile = certFile
	cfg.TLS.KeyFile = keyFile
	env := startServer(t, cfg)
	assert.True(t, env.server.Health().TLS)

	conn, err := tls.Dial("tcp", env.server.Addr().String(), &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	})
	require.NoError(t, err)
	c := newTestClient(t, conn)
	assert.NotEmpty(t, c.hello("Secure"))

	t.Run("old protocol versions are refused", func(t *testing.T) {
		_, err := tls.Dial("tcp", env.server.Addr().String(), &tls.Config{
			RootCAs:    pool,
			MaxVersion: tls.VersionTLS11,
		})
		assert.Error(t, err)
	})

	t.Run("missing key pair", func(t *testing.T) {
		cfg := testConfig()
		cfg.TLS.CertFile = filepath.Join(t.TempDir(), "missing.crt")
		cfg.TLS.KeyFile = filepath.Join(t.TempDir(), "missing.key")
		assert.Error(t, New(cfg, nil).Start(context.Background()))
	})
}
