package router

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapListing/src/api/v1"
	"github.com/ProjectsTask/EasySwapListing/src/common/errcode"
	"github.com/ProjectsTask/EasySwapListing/src/marketplace"
	"github.com/ProjectsTask/EasySwapListing/src/service/svc"
)

type stubContract struct {
	mu       sync.Mutex
	direct   map[string]*marketplace.DirectListing
	buys     []string
	offers   []marketplace.OfferParams
	buyErr   error
	offerErr error
}

func (s *stubContract) DirectListing(_ context.Context, id string) (*marketplace.DirectListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direct[id], nil
}

func (s *stubContract) EnglishAuction(context.Context, string) (*marketplace.EnglishAuction, error) {
	return nil, nil
}

func (s *stubContract) BuyFromListing(_ context.Context, id string, _ int64) (*marketplace.TxResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buys = append(s.buys, id)
	if s.buyErr != nil {
		return nil, s.buyErr
	}
	return &marketplace.TxResult{TxHash: "0x01"}, nil
}

func (s *stubContract) MakeOffer(_ context.Context, p marketplace.OfferParams) (*marketplace.TxResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers = append(s.offers, p)
	if s.offerErr != nil {
		return nil, s.offerErr
	}
	return &marketplace.TxResult{TxHash: "0x02"}, nil
}

func (s *stubContract) MakeBid(context.Context, string, string) (*marketplace.TxResult, error) {
	return &marketplace.TxResult{TxHash: "0x03"}, nil
}

type stubWallet struct{}

func (stubWallet) Address() string                               { return "0x5FbDB2315678afecb367f032d93F642f64180aa3" }
func (stubWallet) TargetChainID() int64                          { return 11155111 }
func (stubWallet) NetworkMismatch(context.Context) (bool, error) { return false, nil }
func (stubWallet) SwitchNetwork(context.Context, int64) error    { return nil }
func (stubWallet) ConnectedChainID() int64                       { return 1 }

type response struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func newTestRouter() (*stubContract, http.Handler) {
	contract := &stubContract{direct: map[string]*marketplace.DirectListing{
		"0": {
			ListingID:      "0",
			TokenID:        big.NewInt(1),
			Quantity:       big.NewInt(1),
			PricePerToken:  big.NewInt(1e17),
			Currency:       marketplace.NativeCurrency,
			AssetContract:  "0xe7f1725e7734ce288f8367e1bb143e90bb3f0512",
			CreatorAddress: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8",
			Asset:          marketplace.Asset{Name: "Cool Cat #0", Image: "https://img/0.png"},
		},
	}}
	svcCtx := svc.NewServerCtx(
		svc.WithContract(contract),
		svc.WithWallet(stubWallet{}),
		svc.WithPageOptions(svc.PageOptions{RenderWait: 2 * time.Second, FetchTimeout: time.Second}),
	)
	return contract, NewRouter(svcCtx)
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

func TestHealthz(t *testing.T) {
	_, h := newTestRouter()
	rec := do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"chain_id":11155111`)
	assert.Contains(t, rec.Body.String(), `"connected_chain_id":1`)
}

func TestListingJSON(t *testing.T) {
	contract, h := newTestRouter()

	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/v1/listings/0", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		State  string `json:"state"`
		Kind   string `json:"kind"`
		Name   string `json:"name"`
		Slug   string `json:"slug"`
		Price  string `json:"price"`
		Owner  string `json:"owner"`
		Chain  string `json:"chain"`
		Notice *struct {
			Message string `json:"message"`
		} `json:"notice"`
	}
	resp := decode(t, rec, &view)
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "ready", view.State)
	assert.Equal(t, "direct", view.Kind)
	assert.Equal(t, "Cool Cat #0", view.Name)
	assert.Equal(t, "cool-cat-0", view.Slug)
	assert.Equal(t, "0.1", view.Price)
	assert.Equal(t, "sepolia", view.Chain)
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", view.Owner)

	sid := rec.Header().Get(v1.SessionHeader)
	require.NotEmpty(t, sid)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/listings/0/offer", strings.NewReader(`{"bid_amount":"0.05"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(v1.SessionHeader, sid)
	rec = do(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var action struct {
		Notice struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
			TxHash  string `json:"tx_hash"`
		} `json:"notice"`
	}
	decode(t, rec, &action)
	assert.Equal(t, "success", action.Notice.Kind)
	assert.Equal(t, "Offer created successfully!", action.Notice.Message)
	assert.Equal(t, "0x02", action.Notice.TxHash)
	require.Len(t, contract.offers, 1)
	assert.Equal(t, "0.05", contract.offers[0].TotalPrice)
	assert.Equal(t, int64(1), contract.offers[0].Quantity)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/listings/0/buy", nil)
	req.Header.Set(v1.SessionHeader, sid)
	rec = do(h, req)
	decode(t, rec, &action)
	assert.Equal(t, "NFT bought successfully!", action.Notice.Message)
	assert.Equal(t, []string{"0"}, contract.buys)
}

func TestListingJSONNotFound(t *testing.T) {
	contract, h := newTestRouter()

	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/v1/listings/404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode(t, rec, nil)
	assert.Equal(t, errcode.CodeListingNotFound, resp.Code)

	rec = do(h, httptest.NewRequest(http.MethodPost, "/api/v1/listings/404/buy", nil))
	var action struct {
		Notice struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"notice"`
	}
	decode(t, rec, &action)
	assert.Equal(t, "failure", action.Notice.Kind)
	assert.Equal(t, "Listing not found", action.Notice.Message)
	assert.Empty(t, contract.buys)
}

func TestListingActionsWithoutDB(t *testing.T) {
	_, h := newTestRouter()

	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/v1/listings/0/actions?limit=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"result":[]`)

	rec = do(h, httptest.NewRequest(http.MethodGet, "/api/v1/listings/0/actions?limit=1000", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListingPage(t *testing.T) {
	contract, h := newTestRouter()

	rec := do(h, httptest.NewRequest(http.MethodGet, "/listing/0", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Cool Cat #0</h1>")
	assert.Contains(t, body, `name="bidAmount"`)
	assert.NotContains(t, body, "alert(")

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, v1.SessionCookie, cookies[0].Name)

	form := url.Values{"bidAmount": {"0.2"}}
	req := httptest.NewRequest(http.MethodPost, "/listing/0/offer", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookies[0])
	rec = do(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alert(")
	assert.Contains(t, rec.Body.String(), "Offer created successfully!")
	assert.Contains(t, rec.Body.String(), `value="0.2"`)
	require.Len(t, contract.offers, 1)
	assert.Equal(t, "0.2", contract.offers[0].TotalPrice)
}

func TestListingPageNotFound(t *testing.T) {
	contract, h := newTestRouter()

	rec := do(h, httptest.NewRequest(http.MethodGet, "/listing/7", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Listing not found")

	rec = do(h, httptest.NewRequest(http.MethodPost, "/listing/7/buy", nil))
	assert.Contains(t, rec.Body.String(), "alert(")
	assert.Contains(t, rec.Body.String(), "Listing not found")
	assert.Empty(t, contract.buys)
}

type actionNotice struct {
	Notice struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
		TxHash  string `json:"tx_hash"`
	} `json:"notice"`
	Listing struct {
		State     string `json:"state"`
		BidAmount string `json:"bid_amount"`
	} `json:"listing"`
}

func postForm(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(h, req)
}

func TestListingBuyJSONRoute(t *testing.T) {
	contract, h := newTestRouter()

	// 未先访问详情页时直接购买
	rec := do(h, httptest.NewRequest(http.MethodPost, "/api/v1/listings/0/buy", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(v1.SessionHeader))
	var action actionNotice
	resp := decode(t, rec, &action)
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "success", action.Notice.Kind)
	assert.Equal(t, "NFT bought successfully!", action.Notice.Message)
	assert.Equal(t, "0x01", action.Notice.TxHash)
	assert.Equal(t, "ready", action.Listing.State)
	assert.Equal(t, []string{"0"}, contract.buys)

	contract.buyErr = errors.New("execution reverted: !BAL20")
	rec = do(h, httptest.NewRequest(http.MethodPost, "/api/v1/listings/0/buy", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &action)
	assert.Equal(t, "failure", action.Notice.Kind)
	assert.Equal(t, "execution reverted: !BAL20", action.Notice.Message)
	assert.Len(t, contract.buys, 2)
}

func TestListingOfferJSONRoute(t *testing.T) {
	contract, h := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/listings/0/offer", strings.NewReader(`{"bid_amount":"0.3"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var action actionNotice
	decode(t, rec, &action)
	assert.Equal(t, "success", action.Notice.Kind)
	assert.Equal(t, "Offer created successfully!", action.Notice.Message)
	assert.Equal(t, "0x02", action.Notice.TxHash)
	assert.Equal(t, "0.3", action.Listing.BidAmount)
	require.Len(t, contract.offers, 1)
	assert.Equal(t, "0.3", contract.offers[0].TotalPrice)
	assert.Equal(t, marketplace.NativeCurrency, contract.offers[0].Currency)

	contract.offerErr = errors.New("invalid amount: \"abc\"")
	req = httptest.NewRequest(http.MethodPost, "/api/v1/listings/0/offer", strings.NewReader(`{"bid_amount":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = do(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &action)
	assert.Equal(t, "failure", action.Notice.Kind)
	assert.Equal(t, `invalid amount: "abc"`, action.Notice.Message)
	require.Len(t, contract.offers, 2)
	assert.Equal(t, "abc", contract.offers[1].TotalPrice)
}

func TestListingBuyPageRoute(t *testing.T) {
	contract, h := newTestRouter()

	rec := postForm(h, "/listing/0/buy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<script>alert("NFT bought successfully!");</script>`)
	assert.Contains(t, body, "<h1>Cool Cat #0</h1>")
	assert.Equal(t, []string{"0"}, contract.buys)

	contract.buyErr = errors.New("insufficient funds for gas")
	rec = postForm(h, "/listing/0/buy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<script>alert("insufficient funds for gas");</script>`)
}

func TestListingOfferPageRoute(t *testing.T) {
	contract, h := newTestRouter()

	rec := postForm(h, "/listing/0/offer", url.Values{"bidAmount": {"0.25"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<script>alert("Offer created successfully!");</script>`)
	assert.Contains(t, body, `value="0.25"`)
	require.Len(t, contract.offers, 1)
	assert.Equal(t, "0.25", contract.offers[0].TotalPrice)

	contract.offerErr = errors.New("wrapped native currency not configured")
	rec = postForm(h, "/listing/0/offer", url.Values{"bidAmount": {"1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<script>alert("wrapped native currency not configured");</script>`)
}
