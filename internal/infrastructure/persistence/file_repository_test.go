package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func storageConfig(dir string) config.StorageConfig {
	return config.StorageConfig{
		DataDir:     dir,
		ClientsFile: "clients.json",
		OrdersFile:  "orders.json",
		CatalogFile: "catalog.json",
	}
}

func newRepo(t *testing.T, cfg config.StorageConfig) (*FileRepository, *LoadReport) {
	t.Helper()
	repo := NewFileRepository(cfg, nil)
	report := repo.Load(context.Background())
	return repo, report
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileRepository_LoadEmpty(t *testing.T) {
	repo, report := newRepo(t, storageConfig(t.TempDir()))

	assert.NoError(t, report.Err)
	assert.Empty(t, report.Diagnostics())
	assert.Empty(t, repo.Clients())
	assert.Empty(t, repo.Orders())
	assert.Equal(t, 0, repo.Catalog().Len())
	assert.Equal(t, 1, repo.NextClientNumber())
	assert.Equal(t, 1, repo.NextOrderNumber())
}

func TestFileRepository_SeedDefaultCatalog(t *testing.T) {
	cfg := storageConfig(t.TempDir())
	cfg.SeedDefaultCatalog = true

	repo, report := newRepo(t, cfg)
	require.NoError(t, report.Err)
	assert.Equal(t, 6, repo.Catalog().Len())
	assert.FileExists(t, cfg.CatalogPath())

	turmeric, ok := repo.Catalog().Resolve("Куркума")
	require.True(t, ok)
	assert.True(t, turmeric.IsPerKg())

	t.Run("existing catalog is not overwritten", func(t *testing.T) {
		writeFile(t, cfg.CatalogPath(), `[{"name": "Соль", "price": 25, "is_per_kg": true}]`)
		repo, _ := newRepo(t, cfg)
		assert.Equal(t, 1, repo.Catalog().Len())
	})
}

func TestFileRepository_RoundTrip(t *testing.T) {
	cfg := storageConfig(t.TempDir())
	cfg.SeedDefaultCatalog = true
	repo, _ := newRepo(t, cfg)

	client, err := repo.CreateClient("  Иванов Иван ", "+79991234567", "I@Mail.ru")
	require.NoError(t, err)
	assert.Equal(t, 1, client.Number())

	sugar, _ := repo.Catalog().Resolve("Сахар")
	laptop, err := catalog.NewProductFromFloat("Ноутбук", 75000, false)
	require.NoError(t, err)

	order, err := trade.NewOrderBuilder(repo.NextOrderNumber(), client).
		At(time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)).
		AddUnit(laptop).
		SetWeight(sugar, decimal.RequireFromString("3.5")).
		Build()
	require.NoError(t, err)
	require.NoError(t, repo.AddOrder(order))
	assert.True(t, repo.Catalog().Contains("Ноутбук"), "unit products from orders are catalogued")

	reloaded, report := newRepo(t, cfg)
	require.NoError(t, report.Err)

	clients := reloaded.Clients()
	require.Len(t, clients, 1)
	assert.Equal(t, "Иванов Иван", clients[0].FIO())
	assert.Equal(t, "i@mail.ru", clients[0].Email())

	orders := reloaded.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, order.Number(), orders[0].Number())
	assert.Same(t, clients[0], orders[0].Client())
	assert.True(t, orders[0].TotalCost().Equal(decimal.NewFromInt(75175)))
	assert.True(t, order.Date().Equal(orders[0].Date()))
	assert.Equal(t, 2, reloaded.NextOrderNumber())
	assert.Equal(t, 2, reloaded.NextClientNumber())
}

func TestFileRepository_DocumentFormat(t *testing.T) {
	cfg := storageConfig(t.TempDir())
	repo, _ := newRepo(t, cfg)

	_, err := repo.CreateClient("Петров", "", "")
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.ClientsPath())
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Петров", "non-ASCII stays literal")
	assert.Contains(t, content, "\n        \"number\": 1", "records are indented with four spaces")

	entries, err := os.ReadDir(cfg.DataDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp files are renamed away")
	}
}

func TestFileRepository_IdentifierAllocation(t *testing.T) {
	repo, _ := newRepo(t, storageConfig(t.TempDir()))

	high, err := partner.NewClient(10, "Сидоров", "", "")
	require.NoError(t, err)
	require.NoError(t, repo.AddClient(high))
	assert.Equal(t, 11, repo.NextClientNumber())

	low, err := partner.NewClient(3, "Кузнецов", "", "")
	require.NoError(t, err)
	require.NoError(t, repo.AddClient(low))
	assert.Equal(t, 11, repo.NextClientNumber(), "counter never moves back")

	next, err := repo.CreateClient("Смирнов", "", "")
	require.NoError(t, err)
	assert.Equal(t, 11, next.Number())
	assert.Equal(t, 12, repo.NextClientNumber())

	t.Run("duplicate number is rejected", func(t *testing.T) {
		dup, err := partner.NewClient(3, "Двойник", "", "")
		require.NoError(t, err)
		err = repo.AddClient(dup)
		assert.ErrorIs(t, err, shared.ErrDuplicateNumber)
		assert.Len(t, repo.Clients(), 3)
	})

	t.Run("order numbers skip gaps", func(t *testing.T) {
		order, err := trade.NewOrder(42, high, nil, time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.AddOrder(order))
		assert.Equal(t, 43, repo.NextOrderNumber())

		created, err := repo.CreateOrder(high.Number(), nil, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, 43, created.Number())
	})
}

func TestFileRepository_DefensiveCopies(t *testing.T) {
	repo, _ := newRepo(t, storageConfig(t.TempDir()))
	_, err := repo.CreateClient("Иванов", "", "")
	require.NoError(t, err)

	clients := repo.Clients()
	clients[0] = nil

	assert.Len(t, repo.Clients(), 1)
	assert.NotNil(t, repo.Clients()[0])
}

func TestFileRepository_LoadDiagnostics(t *testing.T) {
	t.Run("unparseable document degrades to empty collection", func(t *testing.T) {
		cfg := storageConfig(t.TempDir())
		writeFile(t, cfg.ClientsPath(), `{not json`)
		writeFile(t, cfg.CatalogPath(), `[{"name": "Соль", "price": 20, "is_per_kg": true}]`)

		repo, report := newRepo(t, cfg)
		require.Error(t, report.Err)
		assert.ErrorIs(t, report.Err, shared.ErrStorageRead)
		assert.Empty(t, repo.Clients())
		assert.Equal(t, 1, repo.Catalog().Len(), "other documents still load")
	})

	t.Run("invalid records are skipped one by one", func(t *testing.T) {
		cfg := storageConfig(t.TempDir())
		writeFile(t, cfg.CatalogPath(), `[
    {"name": "Сахар", "price": 50, "is_per_kg": true},
    {"name": "Ноутбук", "price": 75000}
]`)
		writeFile(t, cfg.ClientsPath(), `[
    {"number": 1, "fio": "Иванов", "phone": "+79991234567", "email": "i@mail.ru"},
    {"number": 2, "fio": "Петров", "phone": "8-999-123", "email": ""},
    {"number": 5, "fio": "Сидоров", "phone": "", "email": ""}
]`)
		writeFile(t, cfg.OrdersPath(), `[
    {"number": 1, "client_number": 1, "products_list": ["Ноутбук"], "products_kg": {"Сахар": 5}, "date": "2024-03-01T10:00:00"},
    {"number": 2, "client_number": 2, "products_list": [], "products_kg": {}, "date": "2024-03-01T10:00:00"},
    {"number": 3, "client_number": 1, "products_list": ["Телефон"], "products_kg": {}, "date": "2024-03-01T10:00:00"},
    {"number": 4, "client_number": 5, "products_list": [], "products_kg": {"Сахар": 1}, "date": "вчера"},
    {"number": 7, "client_number": 5, "products_list": ["Ноутбук", "Ноутбук"], "products_kg": {}, "date": "2024-03-02"}
]`)

		repo, report := newRepo(t, cfg)

		assert.Equal(t, 2, report.Clients)
		assert.Equal(t, 2, report.Orders)
		assert.Equal(t, 4, report.Skipped)
		assert.Len(t, report.Diagnostics(), 4)
		assert.ErrorIs(t, report.Err, shared.ErrInvalidPhone)
		assert.ErrorIs(t, report.Err, shared.ErrUnknownClient)
		assert.ErrorIs(t, report.Err, shared.ErrUnknownProduct)
		assert.ErrorIs(t, report.Err, shared.ErrInvalidDate)

		assert.Equal(t, 6, repo.NextClientNumber())
		assert.Equal(t, 8, repo.NextOrderNumber())
		assert.True(t, repo.Orders()[1].TotalCost().Equal(decimal.NewFromInt(150000)))
	})

	t.Run("each diagnostic is logged as a warning", func(t *testing.T) {
		cfg := storageConfig(t.TempDir())
		writeFile(t, cfg.OrdersPath(), `[{"number": 1, "client_number": 9, "products_list": [], "products_kg": {}, "date": "2024-03-01"}]`)

		core, logs := observer.New(zapcore.InfoLevel)
		ctx := logger.WithContext(context.Background(), zap.New(core))
		report := NewFileRepository(cfg, nil).Load(ctx)

		require.Len(t, report.Diagnostics(), 1)
		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
		assert.Equal(t, 1, logs.FilterMessage("Repository loaded").Len())
	})
}

func TestFileRepository_WriteFailureKeepsMemoryState(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	writeFile(t, blocker, "")

	repo, _ := newRepo(t, storageConfig(blocker))
	client, err := repo.CreateClient("Иванов", "", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrStorageWrite)
	require.NotNil(t, client)
	assert.Len(t, repo.Clients(), 1, "in-memory append is not rolled back")
	assert.Equal(t, 2, repo.NextClientNumber())
}

func TestFileRepository_Catalog(t *testing.T) {
	cfg := storageConfig(t.TempDir())
	repo, _ := newRepo(t, cfg)
	client, err := repo.CreateClient("Иванов", "", "")
	require.NoError(t, err)

	salt, err := catalog.NewProductFromFloat("Соль", 20, true)
	require.NoError(t, err)
	require.NoError(t, repo.AddProduct(salt))
	require.NoError(t, repo.AddProduct(salt), "re-adding an identical product is a no-op")
	assert.Equal(t, 1, repo.Catalog().Len())

	t.Run("conflicting product definition is rejected", func(t *testing.T) {
		pricier, err := catalog.NewProductFromFloat("Соль", 30, true)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.AddProduct(pricier), shared.ErrProductConflict)

		item, err := trade.NewWeightItem(pricier, decimal.NewFromInt(1))
		require.NoError(t, err)
		_, err = repo.CreateOrder(client.Number(), []trade.LineItem{item}, time.Now())
		assert.ErrorIs(t, err, shared.ErrProductConflict)
		assert.Empty(t, repo.Orders())
	})

	t.Run("one name at two prices in an order is rejected", func(t *testing.T) {
		unit := func(name string, price float64) trade.LineItem {
			p, err := catalog.NewProductFromFloat(name, price, false)
			require.NoError(t, err)
			item, err := trade.NewUnitItem(p, 1)
			require.NoError(t, err)
			return item
		}

		for _, items := range [][]trade.LineItem{
			{unit("Кабель", 10), unit("Кабель", 20)},
			{unit("Кабель", 10), unit("Штекер", 5), unit("Кабель", 20)},
		} {
			_, err := repo.CreateOrder(client.Number(), items, time.Now())
			assert.ErrorIs(t, err, shared.ErrProductConflict)
		}
		assert.Empty(t, repo.Orders())
		assert.False(t, repo.Catalog().Contains("Кабель"))
		assert.False(t, repo.Catalog().Contains("Штекер"))
	})

	t.Run("order for unknown client is rejected", func(t *testing.T) {
		_, err := repo.CreateOrder(99, nil, time.Now())
		assert.ErrorIs(t, err, shared.ErrUnknownClient)

		stranger, err := partner.NewClient(77, "Чужой", "", "")
		require.NoError(t, err)
		order, err := trade.NewOrder(1, stranger, nil, time.Now())
		require.NoError(t, err)
		assert.ErrorIs(t, repo.AddOrder(order), shared.ErrUnknownClient)
	})

	t.Run("repeated unit product keeps its total after reload", func(t *testing.T) {
		cable, err := catalog.NewProductFromFloat("Кабель", 10, false)
		require.NoError(t, err)
		plug, err := catalog.NewProductFromFloat("Штекер", 5, false)
		require.NoError(t, err)
		order, err := trade.NewOrderBuilder(repo.NextOrderNumber(), client).
			AddUnit(cable).AddUnit(plug).AddUnit(cable).
			Build()
		require.NoError(t, err)
		require.NoError(t, repo.AddOrder(order))
		assert.True(t, order.TotalCost().Equal(decimal.NewFromInt(25)))

		reloaded, report := newRepo(t, cfg)
		require.NoError(t, report.Err)
		orders := reloaded.Orders()
		require.Len(t, orders, 1)
		assert.True(t, orders[0].TotalCost().Equal(order.TotalCost()), orders[0].TotalCost().String())
	})

	t.Run("catalog survives reload", func(t *testing.T) {
		reloaded, report := newRepo(t, cfg)
		require.NoError(t, report.Err)
		p, ok := reloaded.Catalog().Resolve("Соль")
		require.True(t, ok)
		assert.True(t, p.SameAs(salt))
	})
}
