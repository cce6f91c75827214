package tables

import "github.com/JonMunkholm/cusip/internal/core"

// issuer is the R.PIP layout.
func issuer() core.FileConfig {
	return core.FileConfig{
		Kind:         core.KindIssuer,
		Table:        "issuer",
		StagingTable: "stg_issuer",
		PrimaryKey:   []string{"issuer_num"},
		Columns: []string{
			"issuer_num",
			"issuer_check",
			"issuer_name_1",
			"issuer_name_2",
			"issuer_name_3",
			"issuer_adl_1",
			"issuer_adl_2",
			"issuer_adl_3",
			"issuer_adl_4",
			"issuer_sort_key",
			"issuer_type",
			"issuer_status",
			"issuer_del_date",
			"issuer_transaction",
			"issuer_state_code",
			"issuer_update_date",
		},
	}
}
