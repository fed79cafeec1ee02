package rows_test

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"slices"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"gitlab.com/pala-software/livelist/pkg/livelist"
	"gitlab.com/pala-software/livelist/pkg/migrator"
	"gitlab.com/pala-software/livelist/pkg/rows"
)

const testSchema = "livelist_rows_test"

var (
	pool  *pgxpool.Pool
	begin *livelist.BeginOperation
	list  *rows.ListOperation
	put   *rows.PutOperation
	del   *rows.DeleteOperation
)

func TestMain(m *testing.M) {
	connStr := os.Getenv("LIVELIST_TEST_DB")
	if connStr == "" {
		// Live tests are skipped without a database to run against.
		os.Exit(m.Run())
	}

	ctx := context.Background()
	var err error
	pool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalln(err)
	}

	mig := migrator.MigratorFromEnv()
	err = migrator.RegisterCoreMigrations(mig)
	if err != nil {
		log.Fatalln(err)
	}
	err = mig.Migrate(pool)
	if err != nil {
		log.Fatalln(err)
	}

	setup := []string{
		`DROP SCHEMA IF EXISTS livelist_rows_test CASCADE`,
		`CREATE SCHEMA livelist_rows_test`,
		`CREATE TABLE livelist_rows_test.task (
			id text PRIMARY KEY,
			title text NOT NULL DEFAULT ''
		)`,
	}
	for _, statement := range setup {
		_, err = pool.Exec(ctx, statement)
		if err != nil {
			log.Fatalln(err)
		}
	}

	begin = livelist.NewBeginOperation(pool)
	list = rows.NewListOperation(begin)
	put = rows.NewPutOperation(begin)
	del = rows.NewDeleteOperation(begin)

	code := m.Run()

	pool.Close()
	os.Exit(code)
}

func runPut(t *testing.T, data map[string]any) {
	t.Helper()
	ctx, err := begin.Begin(context.Background(), nil, testSchema)
	if err != nil {
		t.Fatal(err)
	}
	_, err = put.Execute(ctx, rows.PutParams{
		Table: "task",
		Key:   "id",
		Data:  data,
	})
	if err != nil {
		ctx.Rollback()
		t.Fatal(err)
	}
	err = ctx.Commit()
	if err != nil {
		t.Fatal(err)
	}
}

func runDelete(t *testing.T, where livelist.Where) {
	t.Helper()
	ctx, err := begin.Begin(context.Background(), nil, testSchema)
	if err != nil {
		t.Fatal(err)
	}
	_, err = del.Execute(ctx, rows.DeleteParams{
		Table: "task",
		Where: where,
	})
	if err != nil {
		ctx.Rollback()
		t.Fatal(err)
	}
	err = ctx.Commit()
	if err != nil {
		t.Fatal(err)
	}
}

func runList(t *testing.T, params rows.ListParams) rows.ListResult {
	t.Helper()
	ctx, err := begin.Begin(context.Background(), nil, testSchema)
	if err != nil {
		t.Fatal(err)
	}
	result, err := list.Execute(ctx, params)
	if err != nil {
		ctx.Rollback()
		t.Fatal(err)
	}
	err = ctx.Commit()
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func listTitles(t *testing.T, where livelist.Where) []string {
	t.Helper()
	result := runList(t, rows.ListParams{
		Table: "task",
		Key:   "id",
		Where: where,
		Limit: 100,
	})

	titles := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		var row struct {
			Title string `json:"title"`
		}
		err := json.Unmarshal(item, &row)
		if err != nil {
			t.Fatal(err)
		}
		titles = append(titles, row.Title)
	}
	return titles
}

func TestRowsRoundTrip(t *testing.T) {
	if pool == nil {
		t.Skip("LIVELIST_TEST_DB is not set")
	}
	runDelete(t, livelist.Where{})

	runPut(t, map[string]any{"id": "a", "title": "write"})
	runPut(t, map[string]any{"id": "b", "title": "review"})

	titles := listTitles(t, livelist.Where{})
	if !slices.Equal(titles, []string{"write", "review"}) {
		t.Errorf("expected rows ordered by key, got %v", titles)
	}

	// A second put on the same key replaces the row.
	runPut(t, map[string]any{"id": "a", "title": "rewrite"})
	titles = listTitles(t, livelist.Where{})
	if !slices.Equal(titles, []string{"rewrite", "review"}) {
		t.Errorf("expected upsert to replace the row, got %v", titles)
	}

	titles = listTitles(t, livelist.Where{"title": "review"})
	if !slices.Equal(titles, []string{"review"}) {
		t.Errorf("expected filtered rows, got %v", titles)
	}

	runDelete(t, livelist.Where{"id": "a"})
	titles = listTitles(t, livelist.Where{})
	if !slices.Equal(titles, []string{"review"}) {
		t.Errorf("expected row a to be deleted, got %v", titles)
	}

	runDelete(t, livelist.Where{})
	titles = listTitles(t, livelist.Where{})
	if len(titles) != 0 {
		t.Errorf("expected no rows, got %v", titles)
	}
}

func TestListLimitOffset(t *testing.T) {
	if pool == nil {
		t.Skip("LIVELIST_TEST_DB is not set")
	}
	runDelete(t, livelist.Where{})

	runPut(t, map[string]any{"id": "a", "title": "first"})
	runPut(t, map[string]any{"id": "b", "title": "second"})
	runPut(t, map[string]any{"id": "c", "title": "third"})

	result := runList(t, rows.ListParams{
		Table: "task",
		Key:   "id",
		Where: livelist.Where{},
		Limit: 2,
	})
	if len(result.Items) != 2 {
		t.Errorf("expected two rows, got %d", len(result.Items))
	}

	result = runList(t, rows.ListParams{
		Table:  "task",
		Key:    "id",
		Where:  livelist.Where{},
		Limit:  100,
		Offset: 2,
	})
	if len(result.Items) != 1 {
		t.Errorf("expected one row, got %d", len(result.Items))
	}

	runDelete(t, livelist.Where{})
}
