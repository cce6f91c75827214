package tables

import (
	"testing"

	"github.com/JonMunkholm/cusip/internal/core"
)

func TestRegistry(t *testing.T) {
	reg, err := Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}

	tests := []struct {
		kind     core.FileKind
		table    string
		staging  string
		columns  int
		pk       []string
		firstCol string
		lastCol  string
	}{
		{core.KindIssuer, "issuer", "stg_issuer", 16, []string{"issuer_num"}, "issuer_num", "issuer_update_date"},
		{core.KindIssue, "issue", "stg_issue", 17, []string{"issuer_num", "issue_num"}, "issuer_num", "issue_update_date"},
		{core.KindIssueAttribute, "issue_attribute", "stg_issue_attribute", 53, []string{"issuer_num", "issue_num"}, "issuer_num", "offering_amount_code"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			cfg, err := reg.Lookup(tt.kind)
			if err != nil {
				t.Fatalf("Lookup(%s) error = %v", tt.kind, err)
			}
			if cfg.Table != tt.table || cfg.StagingTable != tt.staging {
				t.Errorf("tables = %s/%s, want %s/%s", cfg.Table, cfg.StagingTable, tt.table, tt.staging)
			}
			if len(cfg.Columns) != tt.columns {
				t.Errorf("len(Columns) = %d, want %d", len(cfg.Columns), tt.columns)
			}
			if cfg.Columns[0] != tt.firstCol || cfg.Columns[len(cfg.Columns)-1] != tt.lastCol {
				t.Errorf("columns run %s..%s, want %s..%s",
					cfg.Columns[0], cfg.Columns[len(cfg.Columns)-1], tt.firstCol, tt.lastCol)
			}
			if len(cfg.PrimaryKey) != len(tt.pk) {
				t.Fatalf("PrimaryKey = %v, want %v", cfg.PrimaryKey, tt.pk)
			}
			for i := range tt.pk {
				if cfg.PrimaryKey[i] != tt.pk[i] {
					t.Errorf("PrimaryKey = %v, want %v", cfg.PrimaryKey, tt.pk)
				}
			}
		})
	}
}

func TestPIP_LoadOrder(t *testing.T) {
	layouts := PIP()
	if len(layouts) != len(core.LoadOrder) {
		t.Fatalf("PIP() returned %d layouts, want %d", len(layouts), len(core.LoadOrder))
	}
	for i, cfg := range layouts {
		if cfg.Kind != core.LoadOrder[i] {
			t.Errorf("layout %d kind = %s, want %s", i, cfg.Kind, core.LoadOrder[i])
		}
	}
}
