package tables

import "github.com/JonMunkholm/cusip/internal/core"

// issueAttribute is the A.PIP layout.
func issueAttribute() core.FileConfig {
	return core.FileConfig{
		Kind:         core.KindIssueAttribute,
		Table:        "issue_attribute",
		StagingTable: "stg_issue_attribute",
		PrimaryKey:   []string{"issuer_num", "issue_num"},
		Columns: []string{
			"issuer_num",
			"issue_num",
			"alternative_min_tax",
			"bank_q",
			"callable",
			"activity_date",
			"first_coupon_date",
			"init_pub_off",
			"payment_frequency",
			"currency_code",
			"domicile_code",
			"underwriter",
			"us_cfi_code",
			"closing_date",
			"ticker_symbol",
			"iso_cfi",
			"depos_eligible",
			"pre_refund",
			"refundable",
			"remarketed",
			"sinking_fund",
			"taxable",
			"form",
			"enhancements",
			"fund_distrb_policy",
			"fund_inv_policy",
			"fund_type",
			"guarantee",
			"income_type",
			"insured_by",
			"ownership_restr",
			"payment_status",
			"preferred_type",
			"putable",
			"rate_type",
			"redemption",
			"source_doc",
			"sponsoring",
			"voting_rights",
			"warrant_assets",
			"warrant_status",
			"warrant_type",
			"where_traded",
			"auditor",
			"paying_agent",
			"tender_agent",
			"xfer_agent",
			"bond_counsel",
			"financial_advisor",
			"municipal_sale_date",
			"sale_type",
			"offering_amount",
			"offering_amount_code",
		},
	}
}
