package repo_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rogerio-castellano/inventory-changelog/internal/db"
	"github.com/rogerio-castellano/inventory-changelog/internal/models"
	"github.com/rogerio-castellano/inventory-changelog/internal/repo"
	"github.com/shopspring/decimal"
)

type storeFactory func(t *testing.T) repo.Store

func memoryFactory(t *testing.T) repo.Store {
	return repo.NewInMemoryStore()
}

var (
	pgDB   *sql.DB
	pgOnce bool
)

func postgresFactory(t *testing.T) repo.Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	if !pgOnce {
		conn, err := db.Connect(ctx, dsn)
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		if err := db.Migrate(ctx, conn); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		pgDB, pgOnce = conn, true
	}
	if _, err := pgDB.ExecContext(ctx, `TRUNCATE inventory_change_logs, inventory_items, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return repo.NewPostgresStore(pgDB)
}

func forEachStore(t *testing.T, fn func(t *testing.T, s repo.Store)) {
	for name, factory := range map[string]storeFactory{"memory": memoryFactory, "postgres": postgresFactory} {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, s repo.Store, name string) models.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), models.User{
		Username: name, Email: name + "@example.com", PasswordHash: "hash",
		CreatedAt: epoch, UpdatedAt: epoch,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func seedItem(t *testing.T, s repo.Store, owner models.User, name string, qty int, price, category string, age time.Duration) models.Item {
	t.Helper()
	ts := epoch.Add(age)
	it, err := s.Items().Create(context.Background(), models.Item{
		Name: name, Quantity: qty, Price: decimal.RequireFromString(price), Category: category,
		Description: name + " description", OwnerID: owner.ID, CreatedAt: ts, UpdatedAt: ts,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return it
}

func names(items []models.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestItemFilter(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repo.Store) {
		ctx := context.Background()
		alice := seedUser(t, s, "alice")
		bob := seedUser(t, s, "bob")
		seedItem(t, s, alice, "apple", 2, "1.50", "Fruit", 1*time.Minute)
		seedItem(t, s, alice, "banana", 5, "0.75", "fruit", 2*time.Minute)
		seedItem(t, s, alice, "cherry", 8, "12.00", "Berries", 3*time.Minute)
		seedItem(t, s, alice, "drill", 10, "99.99", "Tools", 4*time.Minute)
		seedItem(t, s, bob, "eggplant", 1, "2.00", "Fruit", 5*time.Minute)

		five := 5
		minP := decimal.RequireFromString("1")
		maxP := decimal.RequireFromString("20")
		two := 2
		one := 1

		tests := []struct {
			name   string
			filter repo.ItemFilter
			want   []string
			total  int
		}{
			{"default ordering newest first", repo.ItemFilter{}, []string{"drill", "cherry", "banana", "apple"}, 4},
			{"low stock inclusive", repo.ItemFilter{LowStock: &five, Ordering: repo.ParseOrdering("quantity")}, []string{"apple", "banana"}, 2},
			{"category case-insensitive", repo.ItemFilter{Category: "FRUIT", Ordering: repo.ParseOrdering("name")}, []string{"apple", "banana"}, 2},
			{"price range", repo.ItemFilter{MinPrice: &minP, MaxPrice: &maxP, Ordering: repo.ParseOrdering("-price")}, []string{"cherry", "apple"}, 2},
			{"search every term", repo.ItemFilter{Search: "fruit, app"}, []string{"apple"}, 1},
			{"search description", repo.ItemFilter{Search: "drill description"}, []string{"drill"}, 1},
			{"search escapes wildcards", repo.ItemFilter{Search: "%"}, []string{}, 0},
			{"ordering with ignored field", repo.ItemFilter{Ordering: repo.ParseOrdering("owner,-quantity")}, []string{"drill", "cherry", "banana", "apple"}, 4},
			{"pagination", repo.ItemFilter{Ordering: repo.ParseOrdering("name"), Offset: &one, Limit: &two}, []string{"banana", "cherry"}, 4},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tt.filter.OwnerID = alice.ID
				items, total, err := s.Items().Filter(ctx, tt.filter)
				if err != nil {
					t.Fatalf("filter: %v", err)
				}
				if got := names(items); !equal(got, tt.want) {
					t.Errorf("got %v, want %v", got, tt.want)
				}
				if total != tt.total {
					t.Errorf("total %d, want %d", total, tt.total)
				}
			})
		}
	})
}

func TestItemNameOrderingIgnoresCase(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repo.Store) {
		ctx := context.Background()
		alice := seedUser(t, s, "alice")
		for i, name := range []string{"banana", "apple", "Cherry", "Apple"} {
			seedItem(t, s, alice, name, 1, "1", "", time.Duration(i)*time.Minute)
		}

		tests := []struct {
			ordering string
			want     []string
		}{
			{"name", []string{"Apple", "apple", "banana", "Cherry"}},
			{"-name", []string{"Cherry", "banana", "apple", "Apple"}},
		}
		for _, tt := range tests {
			t.Run(tt.ordering, func(t *testing.T) {
				items, _, err := s.Items().Filter(ctx, repo.ItemFilter{OwnerID: alice.ID, Ordering: repo.ParseOrdering(tt.ordering)})
				if err != nil {
					t.Fatal(err)
				}
				if got := names(items); !equal(got, tt.want) {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			})
		}
	})
}

func TestItemOwnerUsernameAndGetByName(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repo.Store) {
		ctx := context.Background()
		alice := seedUser(t, s, "alice")
		bob := seedUser(t, s, "bob")
		it := seedItem(t, s, alice, "apple", 2, "1.50", "", 0)

		got, err := s.Items().GetByID(ctx, it.ID)
		if err != nil || got.OwnerUsername != "alice" || !got.Price.Equal(decimal.RequireFromString("1.5")) {
			t.Fatalf("unexpected item %+v %v", got, err)
		}
		if _, err := s.Items().GetByName(ctx, alice.ID, "apple"); err != nil {
			t.Errorf("get by name: %v", err)
		}
		if _, err := s.Items().GetByName(ctx, bob.ID, "apple"); !errors.Is(err, repo.ErrItemNotFound) {
			t.Errorf("name lookup must be owner scoped, got %v", err)
		}
		if err := s.Items().Delete(ctx, 999); !errors.Is(err, repo.ErrItemNotFound) {
			t.Errorf("expected not found deleting missing item, got %v", err)
		}
	})
}

func TestTransactRollsBack(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repo.Store) {
		ctx := context.Background()
		alice := seedUser(t, s, "alice")
		it := seedItem(t, s, alice, "apple", 2, "1.50", "", 0)

		boom := errors.New("boom")
		err := s.Transact(ctx, func(tx repo.Tx) error {
			cur, err := tx.Items().GetByID(ctx, it.ID)
			if err != nil {
				return err
			}
			cur.Quantity = 50
			if _, err := tx.Items().Update(ctx, cur); err != nil {
				return err
			}
			if _, err := tx.ChangeLogs().Append(ctx, models.ChangeLog{
				ItemID: it.ID, OwnerID: alice.ID, OldQuantity: 2, NewQuantity: 50,
				ChangeType: models.ChangeRestock, ChangeDate: epoch,
			}); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}

		got, _ := s.Items().GetByID(ctx, it.ID)
		if got.Quantity != 2 {
			t.Errorf("quantity %d after rollback, want 2", got.Quantity)
		}
		if _, total, _ := s.ChangeLogs().Filter(ctx, repo.ChangeLogFilter{}); total != 0 {
			t.Errorf("expected no log entries after rollback, got %d", total)
		}
	})
}

func TestChangeLogFilter(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repo.Store) {
		ctx := context.Background()
		alice := seedUser(t, s, "alice")
		bob := seedUser(t, s, "bob")

		appendLog := func(owner models.User, item int64, ct models.ChangeType, at time.Duration) {
			by := owner.ID
			if _, err := s.ChangeLogs().Append(ctx, models.ChangeLog{
				ItemID: item, OwnerID: owner.ID, ChangedBy: &by, OldQuantity: 1, NewQuantity: 2,
				ChangeType: ct, ChangeDate: epoch.Add(at),
			}); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
		appendLog(alice, 1, models.ChangeRestock, time.Hour)
		appendLog(alice, 1, models.ChangeSale, 2*time.Hour)
		appendLog(alice, 2, models.ChangeAdjustment, 3*time.Hour)
		appendLog(bob, 3, models.ChangeRestock, 4*time.Hour)

		aliceID := alice.ID
		item1 := int64(1)
		since := epoch.Add(90 * time.Minute)
		one := 1

		tests := []struct {
			name  string
			f     repo.ChangeLogFilter
			want  int
			total int
		}{
			{"owner scope", repo.ChangeLogFilter{OwnerID: &aliceID}, 3, 3},
			{"by item", repo.ChangeLogFilter{OwnerID: &aliceID, ItemID: &item1}, 2, 2},
			{"by type", repo.ChangeLogFilter{OwnerID: &aliceID, ChangeType: models.ChangeSale}, 1, 1},
			{"since", repo.ChangeLogFilter{OwnerID: &aliceID, Since: &since}, 2, 2},
			{"limit", repo.ChangeLogFilter{OwnerID: &aliceID, Limit: &one}, 1, 3},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				logs, total, err := s.ChangeLogs().Filter(ctx, tt.f)
				if err != nil {
					t.Fatal(err)
				}
				if len(logs) != tt.want || total != tt.total {
					t.Errorf("got %d/%d, want %d/%d", len(logs), total, tt.want, tt.total)
				}
			})
		}

		logs, _, _ := s.ChangeLogs().Filter(ctx, repo.ChangeLogFilter{OwnerID: &aliceID})
		if logs[0].ChangeType != models.ChangeAdjustment || logs[0].ChangedByUsername != "alice" {
			t.Errorf("expected newest entry first with author name, got %+v", logs[0])
		}
		if _, err := s.ChangeLogs().GetByID(ctx, 999); !errors.Is(err, repo.ErrChangeNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestChangeLogDefaultLimit(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repo.Store) {
		ctx := context.Background()
		alice := seedUser(t, s, "alice")
		for i := 0; i < 105; i++ {
			if _, err := s.ChangeLogs().Append(ctx, models.ChangeLog{
				ItemID: 1, OwnerID: alice.ID, ChangeType: models.ChangeAdjustment, ChangeDate: epoch.Add(time.Duration(i) * time.Second),
			}); err != nil {
				t.Fatal(err)
			}
		}
		logs, total, _ := s.ChangeLogs().Filter(ctx, repo.ChangeLogFilter{})
		if len(logs) != 100 || total != 105 {
			t.Errorf("default page: got %d/%d, want 100/105", len(logs), total)
		}
		all := -1
		logs, _, _ = s.ChangeLogs().Filter(ctx, repo.ChangeLogFilter{Limit: &all})
		if len(logs) != 105 {
			t.Errorf("uncapped: got %d, want 105", len(logs))
		}
	})
}

func TestUserUniquenessAndDeleteCascade(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repo.Store) {
		ctx := context.Background()
		alice := seedUser(t, s, "alice")
		bob := seedUser(t, s, "bob")

		_, err := s.Users().Create(ctx, models.User{Username: "alice", Email: "new@example.com", PasswordHash: "x"})
		if !errors.Is(err, repo.ErrDuplicateUsername) {
			t.Errorf("expected duplicate username, got %v", err)
		}
		_, err = s.Users().Create(ctx, models.User{Username: "carol", Email: "alice@example.com", PasswordHash: "x"})
		if !errors.Is(err, repo.ErrDuplicateEmail) {
			t.Errorf("expected duplicate email, got %v", err)
		}
		bob.Username = "alice"
		if _, err := s.Users().Update(ctx, bob); !errors.Is(err, repo.ErrDuplicateUsername) {
			t.Errorf("expected duplicate username on update, got %v", err)
		}

		it := seedItem(t, s, alice, "apple", 1, "1", "", 0)
		bobID := bob.ID
		if _, err := s.ChangeLogs().Append(ctx, models.ChangeLog{
			ItemID: it.ID, OwnerID: alice.ID, ChangedBy: &bobID, ChangeType: models.ChangeRestock, ChangeDate: epoch,
		}); err != nil {
			t.Fatal(err)
		}

		if err := s.Users().Delete(ctx, bob.ID); err != nil {
			t.Fatalf("delete bob: %v", err)
		}
		logs, _, _ := s.ChangeLogs().Filter(ctx, repo.ChangeLogFilter{})
		if len(logs) != 1 || logs[0].ChangedBy != nil {
			t.Errorf("expected author cleared, got %+v", logs)
		}

		if err := s.Users().Delete(ctx, alice.ID); err != nil {
			t.Fatalf("delete alice: %v", err)
		}
		if _, err := s.Items().GetByID(ctx, it.ID); !errors.Is(err, repo.ErrItemNotFound) {
			t.Errorf("items must be deleted with their owner, got %v", err)
		}
		if err := s.Users().Delete(ctx, alice.ID); !errors.Is(err, repo.ErrUserNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestDashboardMetrics(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repo.Store) {
		ctx := context.Background()
		alice := seedUser(t, s, "alice")
		a := seedItem(t, s, alice, "apple", 2, "1", "", 0)
		seedItem(t, s, alice, "banana", 9, "1", "", 0)
		for _, ct := range []models.ChangeType{models.ChangeRestock, models.ChangeSale, models.ChangeSale} {
			if _, err := s.ChangeLogs().Append(ctx, models.ChangeLog{ItemID: a.ID, OwnerID: alice.ID, ChangeType: ct, ChangeDate: epoch}); err != nil {
				t.Fatal(err)
			}
		}

		m, err := s.Metrics().DashboardMetrics(ctx, alice.ID, 5)
		if err != nil {
			t.Fatal(err)
		}
		if m.TotalItems != 2 || m.TotalQuantity != 11 || m.LowStockCount != 1 || m.TotalChanges != 3 {
			t.Errorf("unexpected metrics %+v", m)
		}
		if m.ChangesByType[models.ChangeSale] != 2 || m.ChangesByType[models.ChangeAdjustment] != 0 {
			t.Errorf("unexpected breakdown %v", m.ChangesByType)
		}
		if m.MostChangedItem == nil || m.MostChangedItem.Name != "apple" || m.MostChangedItem.ChangeCount != 3 {
			t.Errorf("unexpected most changed %+v", m.MostChangedItem)
		}
	})
}
