package jobs_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"cafe.GO/api/apitest"
	"cafe.GO/cron"
	"cafe.GO/cron/jobs"
	"cafe.GO/model/entity"
	productService "cafe.GO/service/product"
)

func TestExportCatalog(t *testing.T) {
	s := apitest.New(t)
	s.Seed(t, "latte", "Latte", "Coffee", "4.50")

	n, err := jobs.ExportCatalog(context.Background(), s.Deps)
	if err != nil || n != 1 {
		t.Fatalf("ExportCatalog = %d, %v", n, err)
	}
	raw, err := os.ReadFile(jobs.CatalogPath(s.Deps))
	if err != nil {
		t.Fatal(err)
	}
	var out productService.Export
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Products[0].ID != "latte" {
		t.Errorf("export = %+v", out)
	}
}

func TestCleanupSessions(t *testing.T) {
	s := apitest.New(t)
	c := s.NewClient()
	c.SignUp(t, "ada@example.com")

	expired := entity.CustomerSession{Token: "old-token", CustomerID: 1, ExpiresAt: time.Now().Add(-time.Hour)}
	if err := s.Deps.DB.Create(&expired).Error; err != nil {
		t.Fatal(err)
	}

	n, err := jobs.CleanupSessions(context.Background(), s.Deps)
	if err != nil || n != 1 {
		t.Fatalf("CleanupSessions = %d, %v; want 1", n, err)
	}
	var left int64
	s.Deps.DB.Model(&entity.CustomerSession{}).Count(&left)
	if left != 1 {
		t.Errorf("sessions left = %d, want the live one", left)
	}
}

type closer struct{ closed bool }

func (c *closer) Close() error {
	c.closed = true
	return nil
}

func TestSweepCache_ClosesEvicted(t *testing.T) {
	s := apitest.New(t)
	cl := &closer{}
	s.Deps.Cache.Set("sweep|expired", cl, time.Nanosecond, nil)
	s.Deps.Cache.Set("sweep|live", &closer{}, time.Hour, nil)
	time.Sleep(2 * time.Millisecond)

	if n := jobs.SweepCache(s.Deps); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if !cl.closed {
		t.Error("evicted closer not closed")
	}
	if _, ok := s.Deps.Cache.Get("sweep|live"); !ok {
		t.Error("live entry swept")
	}
}

func TestRegister(t *testing.T) {
	t.Setenv("CRON_CATALOGJSON", "*/5 * * * *")
	s := apitest.New(t)
	jobs.Register(s.Deps)
	defer func() {
		for _, n := range []string{jobs.CatalogJSON, jobs.SessionCleanup, jobs.CacheSweep} {
			cron.Unregister(n)
		}
	}()

	registered := cron.Jobs()
	for _, n := range []string{jobs.CatalogJSON, jobs.SessionCleanup, jobs.CacheSweep} {
		if _, ok := registered[n]; !ok {
			t.Errorf("job %s not registered", n)
		}
	}
	if got := registered[jobs.CatalogJSON].Schedule; got != "*/5 * * * *" {
		t.Errorf("catalogjson schedule = %q, want env override", got)
	}
	registered[jobs.CacheSweep].Run()
}
