// Command client is a minimal relying party for trying the authorization
// server locally: it runs the authorization-code flow, calls userinfo and
// exercises refresh and revocation. Pair it with the seeded demo app.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"golang.org/x/oauth2"
)

var (
	authBaseURL  = env("NEXAUTH_BASE_URL", "http://localhost:9096")
	clientID     = env("NEXAUTH_CLIENT_ID", "")
	clientSecret = env("NEXAUTH_CLIENT_SECRET", "demo-client-secret")
	listenPort   = env("NEXAUTH_CLIENT_PORT", "9098")
	state        = env("NEXAUTH_STATE", "xyz")
)

var conf *oauth2.Config

var current *oauth2.Token

func main() {
	if clientID == "" {
		log.Fatal("set NEXAUTH_CLIENT_ID to the seeded app's client_id")
	}
	conf = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  "http://localhost:" + listenPort + "/callback",
		Scopes:       []string{"openid", "profile", "email", "offline_access"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   authBaseURL + "/oauth/authorize",
			TokenURL:  authBaseURL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	http.HandleFunc("/", handleIndex)
	http.HandleFunc("/login", handleLogin)
	http.HandleFunc("/callback", handleCallback)
	http.HandleFunc("/userinfo", handleUserInfo)
	http.HandleFunc("/refresh", handleRefresh)

	log.Printf("example client running at http://localhost:%s", listenPort)
	log.Fatal(http.ListenAndServe(":"+listenPort, nil))
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	status := "not signed in"
	if current != nil {
		status = "access token acquired"
	}
	fmt.Fprintf(w, `<h1>Nexauth Example Client</h1>
<p>Status: %s</p>
<ul>
<li><a href="/login">Authorize</a></li>
<li><a href="/userinfo">Fetch userinfo</a></li>
<li><a href="/refresh">Refresh token</a></li>
</ul>`, status)
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, conf.AuthCodeURL(state), http.StatusFound)
}

func handleCallback(w http.ResponseWriter, r *http.Request) {
	if got := r.URL.Query().Get("state"); got != state {
		http.Error(w, "state mismatch: "+got, http.StatusBadRequest)
		return
	}
	tok, err := conf.Exchange(context.Background(), r.URL.Query().Get("code"))
	if err != nil {
		http.Error(w, "exchange failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	current = tok
	http.Redirect(w, r, "/", http.StatusFound)
}

func handleUserInfo(w http.ResponseWriter, r *http.Request) {
	if current == nil {
		http.Error(w, "authorize first", http.StatusUnauthorized)
		return
	}
	req, _ := http.NewRequest(http.MethodGet, authBaseURL+"/oauth/userinfo", nil)
	req.Header.Set("Authorization", "Bearer "+current.AccessToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	var pretty map[string]interface{}
	if json.Unmarshal(body, &pretty) == nil {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.StatusCode)
	w.Write(body)
}

func handleRefresh(w http.ResponseWriter, r *http.Request) {
	if current == nil || current.RefreshToken == "" {
		http.Error(w, "no refresh token; authorize with offline_access first", http.StatusBadRequest)
		return
	}
	// force a refresh by presenting an expired token to the source
	stale := *current
	stale.AccessToken = ""
	tok, err := conf.TokenSource(context.Background(), &stale).Token()
	if err != nil {
		http.Error(w, "refresh failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	current = tok
	fmt.Fprintln(w, "token refreshed")
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
