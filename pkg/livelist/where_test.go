package livelist_test

import (
	"net/url"
	"testing"

	"gitlab.com/pala-software/livelist/pkg/livelist"
)

func TestParseWhere(t *testing.T) {
	query := url.Values{
		"where[group]": {"7"},
		"where[state]": {"open", "closed"},
		"key":          {"id"},
		"where[":       {"broken"},
	}

	where := livelist.ParseWhere(query)

	if len(where) != 2 {
		t.Fatalf("expected 2 conditions, got %v", where)
	}
	if where["group"] != "7" {
		t.Errorf("expected group condition '7', got '%s'", where["group"])
	}
	if where["state"] != "open" {
		t.Errorf("expected state condition 'open', got '%s'", where["state"])
	}
}

func TestWhereString(t *testing.T) {
	where := livelist.Where{"b": "2", "a": "1"}

	expected := `WHERE "t"."a" = $3 AND "t"."b" = $4`
	if actual := where.String("t", 3); actual != expected {
		t.Errorf("expected clause '%s', got '%s'", expected, actual)
	}

	values := where.Values()
	if len(values) != 2 || values[0] != "1" || values[1] != "2" {
		t.Errorf("expected values [1 2], got %v", values)
	}
}

func TestWhereStringEmpty(t *testing.T) {
	where := livelist.Where{}
	if actual := where.String("t", 1); actual != "" {
		t.Errorf("expected empty clause, got '%s'", actual)
	}
}

func TestWhereQuotesIdentifiers(t *testing.T) {
	where := livelist.Where{`weird"name`: "1"}

	expected := `WHERE "t"."weird""name" = $1`
	if actual := where.String("t", 1); actual != expected {
		t.Errorf("expected clause '%s', got '%s'", expected, actual)
	}
}

func TestWhereAddDetails(t *testing.T) {
	where := livelist.Where{"group": "7"}
	details := map[string]string{"table": "task"}
	where.AddDetails(details)

	if details["where[group]"] != "7" {
		t.Errorf("expected where[group] detail '7', got '%s'", details["where[group]"])
	}
	if details["table"] != "task" {
		t.Errorf("expected table detail to survive, got '%s'", details["table"])
	}
}
