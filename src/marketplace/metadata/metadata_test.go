package metadata

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cid = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func TestResolveURI(t *testing.T) {
	r := NewResolver(Config{IpfsGateway: "https://gw.example/ipfs"})

	assert.Equal(t, "https://gw.example/ipfs/"+cid+"/1.json", r.ResolveURI("ipfs://"+cid+"/1.json"))
	assert.Equal(t, "https://gw.example/ipfs/"+cid, r.ResolveURI("ipfs://ipfs/"+cid))
	assert.Equal(t, "https://gw.example/ipfs/"+cid+"/a.png", r.ResolveURI("/ipfs/"+cid+"/a.png"))
	assert.Equal(t, "https://arweave.net/abc", r.ResolveURI("ar://abc"))
	assert.Equal(t, "https://cdn.example/a.png", r.ResolveURI("https://cdn.example/a.png"))
	assert.Equal(t, "", r.ResolveURI(" "))
}

func TestFetchHTTP(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"name":"Ape #1","description":"d","image":"ipfs://` + cid + `/1.png"}`))
	}))
	defer srv.Close()

	r := NewResolver(Config{IpfsGateway: "https://gw.example/ipfs/", Retries: 2})
	asset, err := r.Fetch(context.Background(), srv.URL+"/1.json")
	require.NoError(t, err)
	assert.Equal(t, "Ape #1", asset.Name)
	assert.Equal(t, "https://gw.example/ipfs/"+cid+"/1.png", asset.Image)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewResolver(Config{})
	_, err := r.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetchDataURI(t *testing.T) {
	r := NewResolver(Config{})
	payload := base64.StdEncoding.EncodeToString([]byte(`{"name":"On-chain","image":"https://img.example/x.svg"}`))

	asset, err := r.Fetch(context.Background(), "data:application/json;base64,"+payload)
	require.NoError(t, err)
	assert.Equal(t, "On-chain", asset.Name)
	assert.Equal(t, "https://img.example/x.svg", asset.Image)
}
