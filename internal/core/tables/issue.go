package tables

import "github.com/JonMunkholm/cusip/internal/core"

// issue is the E.PIP layout.
func issue() core.FileConfig {
	return core.FileConfig{
		Kind:         core.KindIssue,
		Table:        "issue",
		StagingTable: "stg_issue",
		PrimaryKey:   []string{"issuer_num", "issue_num"},
		Columns: []string{
			"issuer_num",
			"issue_num",
			"issue_check",
			"issue_desc_1",
			"issue_desc_2",
			"issue_adl_1",
			"issue_adl_2",
			"issue_adl_3",
			"issue_adl_4",
			"issue_status",
			"dated_date",
			"maturity_date",
			"partial_maturity",
			"rate",
			"govt_stimulus_program",
			"issue_transaction",
			"issue_update_date",
		},
	}
}
