package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j1vetr/EscapeTable/internal/auth"
	"github.com/j1vetr/EscapeTable/internal/catalog"
	"github.com/j1vetr/EscapeTable/internal/delivery"
	"github.com/j1vetr/EscapeTable/internal/order"
	"github.com/j1vetr/EscapeTable/internal/settings"
	"github.com/j1vetr/EscapeTable/internal/user"
)

type fakeCatalogRepo struct {
	listProductsFunc   func(ctx context.Context, categoryID string) ([]catalog.Product, error)
	searchProductsFunc func(ctx context.Context, query string, limit int) ([]catalog.Product, error)
	getProductFunc     func(ctx context.Context, id string) (catalog.Product, error)
	createProductFunc  func(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
}

func (f *fakeCatalogRepo) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) GetCategory(ctx context.Context, id string) (catalog.Category, error) {
	return catalog.Category{}, catalog.ErrNotFound
}

func (f *fakeCatalogRepo) CreateCategory(ctx context.Context, in catalog.CategoryInput) (catalog.Category, error) {
	return catalog.Category{ID: "c1", Name: in.Name}, nil
}

func (f *fakeCatalogRepo) UpdateCategory(ctx context.Context, id string, p catalog.CategoryPatch) (catalog.Category, error) {
	return catalog.Category{}, catalog.ErrNotFound
}

func (f *fakeCatalogRepo) DeleteCategory(ctx context.Context, id string) error {
	return catalog.ErrNotFound
}

func (f *fakeCatalogRepo) ListProducts(ctx context.Context, categoryID string) ([]catalog.Product, error) {
	if f.listProductsFunc != nil {
		return f.listProductsFunc(ctx, categoryID)
	}
	return nil, nil
}

func (f *fakeCatalogRepo) FeaturedProducts(ctx context.Context) ([]catalog.Product, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) SearchProducts(ctx context.Context, query string, limit int) ([]catalog.Product, error) {
	if f.searchProductsFunc != nil {
		return f.searchProductsFunc(ctx, query, limit)
	}
	return nil, nil
}

func (f *fakeCatalogRepo) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	if f.getProductFunc != nil {
		return f.getProductFunc(ctx, id)
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (f *fakeCatalogRepo) CreateProduct(ctx context.Context, in catalog.ProductInput) (catalog.Product, error) {
	if f.createProductFunc != nil {
		return f.createProductFunc(ctx, in)
	}
	return catalog.Product{ID: "p1", Name: in.Name}, nil
}

func (f *fakeCatalogRepo) UpdateProduct(ctx context.Context, id string, p catalog.ProductPatch) (catalog.Product, error) {
	return catalog.Product{}, catalog.ErrNotFound
}

func (f *fakeCatalogRepo) DeleteProduct(ctx context.Context, id string) error {
	return catalog.ErrNotFound
}

func (f *fakeCatalogRepo) AdjustStock(ctx context.Context, productID string, change int, reason, notes string) error {
	return nil
}

type fakeDeliveryRepo struct {
	listLocationsFunc func(ctx context.Context, regionID string) ([]delivery.CampingLocation, error)
}

func (f *fakeDeliveryRepo) ListRegions(ctx context.Context) ([]delivery.Region, error) {
	return nil, nil
}

func (f *fakeDeliveryRepo) GetRegion(ctx context.Context, id string) (delivery.Region, error) {
	return delivery.Region{}, delivery.ErrNotFound
}

func (f *fakeDeliveryRepo) CreateRegion(ctx context.Context, in delivery.RegionInput) (delivery.Region, error) {
	return delivery.Region{ID: "r1", Name: in.Name}, nil
}

func (f *fakeDeliveryRepo) UpdateRegion(ctx context.Context, id string, p delivery.RegionPatch) (delivery.Region, error) {
	return delivery.Region{}, delivery.ErrNotFound
}

func (f *fakeDeliveryRepo) DeleteRegion(ctx context.Context, id string) error {
	return delivery.ErrNotFound
}

func (f *fakeDeliveryRepo) ListLocations(ctx context.Context, regionID string) ([]delivery.CampingLocation, error) {
	if f.listLocationsFunc != nil {
		return f.listLocationsFunc(ctx, regionID)
	}
	return nil, nil
}

func (f *fakeDeliveryRepo) CreateLocation(ctx context.Context, in delivery.CampingLocationInput) (delivery.CampingLocation, error) {
	return delivery.CampingLocation{ID: "l1", Name: in.Name}, nil
}

func (f *fakeDeliveryRepo) UpdateLocation(ctx context.Context, id string, p delivery.CampingLocationPatch) (delivery.CampingLocation, error) {
	return delivery.CampingLocation{}, delivery.ErrNotFound
}

func (f *fakeDeliveryRepo) DeleteLocation(ctx context.Context, id string) error {
	return delivery.ErrNotFound
}

func (f *fakeDeliveryRepo) ListSlots(ctx context.Context, regionID string) ([]delivery.Slot, error) {
	return nil, nil
}

func (f *fakeDeliveryRepo) CreateSlot(ctx context.Context, in delivery.SlotInput) (delivery.Slot, error) {
	return delivery.Slot{ID: "s1"}, nil
}

func (f *fakeDeliveryRepo) UpdateSlot(ctx context.Context, id string, p delivery.SlotPatch) (delivery.Slot, error) {
	return delivery.Slot{}, delivery.ErrNotFound
}

func (f *fakeDeliveryRepo) DeleteSlot(ctx context.Context, id string) error {
	return delivery.ErrNotFound
}

type fakeOrderRepo struct {
	createFunc       func(ctx context.Context, o *order.Order) error
	getByIDFunc      func(ctx context.Context, id string) (order.Order, error)
	listFunc         func(ctx context.Context, userID string) ([]order.Order, error)
	updateStatusFunc func(ctx context.Context, id string, status order.Status) (order.Order, error)
}

func (f *fakeOrderRepo) Create(ctx context.Context, o *order.Order) error {
	if f.createFunc != nil {
		return f.createFunc(ctx, o)
	}
	o.ID = "order-1"
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id string) (order.Order, error) {
	if f.getByIDFunc != nil {
		return f.getByIDFunc(ctx, id)
	}
	return order.Order{}, order.ErrNotFound
}

func (f *fakeOrderRepo) List(ctx context.Context, userID string) ([]order.Order, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx, userID)
	}
	return nil, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id string, status order.Status) (order.Order, error) {
	if f.updateStatusFunc != nil {
		return f.updateStatusFunc(ctx, id, status)
	}
	return order.Order{}, order.ErrNotFound
}

func (f *fakeOrderRepo) DashboardStats(ctx context.Context, now time.Time) (order.Stats, error) {
	return order.Stats{TotalOrders: 3, TotalRevenue: 18000}, nil
}

type fakeUserRepo struct {
	users map[string]user.User // keyed by email
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if _, ok := f.users[u.Email]; ok {
		return user.User{}, user.ErrEmailExists
	}
	u.ID = "u-" + u.Email
	u.Role = user.RoleCustomer
	if f.users == nil {
		f.users = map[string]user.User{}
	}
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id string, p user.ProfilePatch) (user.User, error) {
	for email, u := range f.users {
		if u.ID == id {
			if p.FirstName != nil {
				u.FirstName = *p.FirstName
			}
			f.users[email] = u
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

type fakeSettingsRepo struct{}

func (f *fakeSettingsRepo) Get(ctx context.Context, key string) (settings.Setting, error) {
	if key == "site" {
		return settings.Setting{Key: "site", Value: json.RawMessage(`{"title":"EscapeTable"}`)}, nil
	}
	return settings.Setting{}, settings.ErrNotFound
}

func (f *fakeSettingsRepo) Set(ctx context.Context, s settings.Setting) (settings.Setting, error) {
	return s, nil
}

type fakePublisher struct {
	published int
	last      *order.Order
}

func (f *fakePublisher) PublishOrderCreated(ctx context.Context, o *order.Order) error {
	f.published++
	f.last = o
	return nil
}

type testServer struct {
	handler   http.Handler
	sessions  *auth.Manager
	orders    *fakeOrderRepo
	users     *fakeUserRepo
	catalog   *fakeCatalogRepo
	publisher *fakePublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	sessions := auth.NewManager(auth.NewMemorySessionStore(), false)

	ts := &testServer{
		sessions:  sessions,
		orders:    &fakeOrderRepo{},
		users:     &fakeUserRepo{users: map[string]user.User{}},
		catalog:   &fakeCatalogRepo{},
		publisher: &fakePublisher{},
	}
	ts.handler = NewRouter(Handlers{
		Auth:     NewAuthHandler(ts.users, sessions, logger),
		Catalog:  NewCatalogHandler(ts.catalog, logger),
		Delivery: NewDeliveryHandler(&fakeDeliveryRepo{}, logger),
		Orders:   NewOrderHandler(ts.orders, ts.publisher, logger),
		Settings: NewSettingsHandler(&fakeSettingsRepo{}, logger),
	}, sessions, nil, []string{"*"})
	return ts
}

func (ts *testServer) sessionCookie(t *testing.T, id string, role user.Role) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	_, err := ts.sessions.Issue(context.Background(), rr, user.User{ID: id, Role: role})
	require.NoError(t, err)
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func (ts *testServer) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp["message"]
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRegisterThenDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]string{
		"email":     "ali@example.com",
		"password":  "gizli123",
		"firstName": "Ali",
		"lastName":  "Veli",
		"phone":     "5321234567",
	}

	rr := ts.do(http.MethodPost, "/api/register", body, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotEmpty(t, rr.Result().Cookies(), "register must open a session")

	rr = ts.do(http.MethodPost, "/api/register", body, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Bu e-posta adresi zaten kayıtlı", message(t, rr))
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(http.MethodPost, "/api/register", map[string]string{
		"email":     "ali@example.com",
		"password":  "123",
		"firstName": "Ali",
		"lastName":  "Veli",
		"phone":     "5321234567",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, message(t, rr), "en az 6")
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	hash, err := auth.HashPassword("dogru-sifre")
	require.NoError(t, err)
	ts.users.users["ali@example.com"] = user.User{ID: "u1", Email: "ali@example.com", PasswordHash: hash}

	rr := ts.do(http.MethodPost, "/api/login", map[string]string{
		"email": "ali@example.com", "password": "yanlis",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "E-posta veya şifre hatalı", message(t, rr))
}

func TestCurrentUserRequiresSession(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(http.MethodGet, "/api/user", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProductMutationsAreStaffGated(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]any{"categoryId": "c1", "name": "Süt", "priceInCents": 3500}

	rr := ts.do(http.MethodPost, "/api/products", body, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	customer := ts.sessionCookie(t, "u1", user.RoleCustomer)
	rr = ts.do(http.MethodPost, "/api/products", body, customer)
	require.Equal(t, http.StatusForbidden, rr.Code)

	staff := ts.sessionCookie(t, "u2", user.RolePersonnel)
	rr = ts.do(http.MethodPost, "/api/products", body, staff)
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestSearchProductsPassesQuery(t *testing.T) {
	ts := newTestServer(t)
	var gotQuery string
	var gotLimit int
	ts.catalog.searchProductsFunc = func(ctx context.Context, query string, limit int) ([]catalog.Product, error) {
		gotQuery, gotLimit = query, limit
		return []catalog.Product{{ID: "p1", Name: "Süt 1L"}}, nil
	}

	rr := ts.do(http.MethodGet, "/api/products/search?q=süt", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "süt", gotQuery)
	assert.Equal(t, 0, gotLimit)

	var resp []catalog.Product
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp, 1)
}

func TestListProductsEmptyIsArray(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(http.MethodGet, "/api/products", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func validOrderBody() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"productId": "p1", "productName": "Süt 1L", "productPriceInCents": 3500, "quantity": 2, "subtotalInCents": 7000},
		},
		"paymentMethod":         "cash",
		"campingLocationId":     "loc-1",
		"totalAmountInCents":    7000,
		"estimatedDeliveryTime": "10.03.2025 14:00 - 15:00",
	}
}

func TestCreateOrder(t *testing.T) {
	ts := newTestServer(t)
	var created *order.Order
	ts.orders.createFunc = func(ctx context.Context, o *order.Order) error {
		o.ID = "order-1"
		created = o
		return nil
	}
	cookie := ts.sessionCookie(t, "u1", user.RoleCustomer)

	rr := ts.do(http.MethodPost, "/api/orders", validOrderBody(), cookie)
	require.Equal(t, http.StatusCreated, rr.Code)

	require.NotNil(t, created)
	assert.Equal(t, "u1", created.UserID, "user id must come from the session, not the body")
	assert.Equal(t, order.StatusPreparing, created.Status)
	assert.Equal(t, "10.03.2025 14:00 - 15:00", created.EstimatedDeliveryTime)
	require.Len(t, created.Items, 1)
	assert.Equal(t, 7000, created.Items[0].SubtotalInCents)

	assert.Equal(t, 1, ts.publisher.published)
	assert.Equal(t, "order-1", ts.publisher.last.ID)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	ts := newTestServer(t)
	ts.orders.createFunc = func(ctx context.Context, o *order.Order) error {
		return &order.InsufficientStockError{ProductID: "p1", ProductName: "Süt 1L", Requested: 2, Available: 1}
	}
	cookie := ts.sessionCookie(t, "u1", user.RoleCustomer)

	rr := ts.do(http.MethodPost, "/api/orders", validOrderBody(), cookie)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Yetersiz stok: Süt 1L", message(t, rr))
	assert.Zero(t, ts.publisher.published, "rejected orders must not publish events")
}

func TestCreateOrderInvalidPayment(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.sessionCookie(t, "u1", user.RoleCustomer)

	body := validOrderBody()
	body["paymentMethod"] = "credit_card"
	rr := ts.do(http.MethodPost, "/api/orders", body, cookie)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Geçersiz ödeme yöntemi", message(t, rr))
}

func TestCreateOrderEmptyItems(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.sessionCookie(t, "u1", user.RoleCustomer)

	body := validOrderBody()
	body["items"] = []map[string]any{}
	rr := ts.do(http.MethodPost, "/api/orders", body, cookie)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListOrdersScopedByRole(t *testing.T) {
	ts := newTestServer(t)
	var gotUserID string
	ts.orders.listFunc = func(ctx context.Context, userID string) ([]order.Order, error) {
		gotUserID = userID
		return nil, nil
	}

	customer := ts.sessionCookie(t, "u1", user.RoleCustomer)
	rr := ts.do(http.MethodGet, "/api/orders", nil, customer)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", gotUserID)

	staff := ts.sessionCookie(t, "u2", user.RoleAdmin)
	rr = ts.do(http.MethodGet, "/api/orders", nil, staff)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "", gotUserID, "staff see all orders")
}

func TestGetOrderOwnership(t *testing.T) {
	ts := newTestServer(t)
	ts.orders.getByIDFunc = func(ctx context.Context, id string) (order.Order, error) {
		return order.Order{ID: id, UserID: "owner"}, nil
	}

	other := ts.sessionCookie(t, "intruder", user.RoleCustomer)
	rr := ts.do(http.MethodGet, "/api/orders/order-1", nil, other)
	require.Equal(t, http.StatusForbidden, rr.Code)

	owner := ts.sessionCookie(t, "owner", user.RoleCustomer)
	rr = ts.do(http.MethodGet, "/api/orders/order-1", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)

	staff := ts.sessionCookie(t, "staff", user.RolePersonnel)
	rr = ts.do(http.MethodGet, "/api/orders/order-1", nil, staff)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.orders.updateStatusFunc = func(ctx context.Context, id string, status order.Status) (order.Order, error) {
		if id != "order-1" {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{ID: id, Status: status}, nil
	}

	customer := ts.sessionCookie(t, "u1", user.RoleCustomer)
	rr := ts.do(http.MethodPatch, "/api/orders/order-1/status", map[string]string{"status": "delivered"}, customer)
	require.Equal(t, http.StatusForbidden, rr.Code)

	staff := ts.sessionCookie(t, "u2", user.RolePersonnel)

	rr = ts.do(http.MethodPatch, "/api/orders/order-1/status", map[string]string{"status": "teslim"}, staff)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(http.MethodPatch, "/api/orders/order-1/status", map[string]string{"status": "delivered"}, staff)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp order.Order
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, order.StatusDelivered, resp.Status)

	rr = ts.do(http.MethodPatch, "/api/orders/gone/status", map[string]string{"status": "cancelled"}, staff)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDashboardStatsStaffOnly(t *testing.T) {
	ts := newTestServer(t)

	customer := ts.sessionCookie(t, "u1", user.RoleCustomer)
	rr := ts.do(http.MethodGet, "/api/admin/dashboard-stats", nil, customer)
	require.Equal(t, http.StatusForbidden, rr.Code)

	staff := ts.sessionCookie(t, "u2", user.RoleAdmin)
	rr = ts.do(http.MethodGet, "/api/admin/dashboard-stats", nil, staff)
	require.Equal(t, http.StatusOK, rr.Code)

	var stats order.Stats
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&stats))
	assert.Equal(t, 3, stats.TotalOrders)
}

func TestSettings(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/api/settings/site", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(http.MethodGet, "/api/settings/yok", nil, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	body := map[string]any{"value": map[string]string{"title": "Yeni"}}
	rr = ts.do(http.MethodPut, "/api/settings/site", body, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	staff := ts.sessionCookie(t, "u1", user.RoleAdmin)
	rr = ts.do(http.MethodPut, "/api/settings/site", body, staff)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}
