package kpimaster

import "kpi-dashboard/internal/model"

// DefaultTemplateID is the id of the built-in D2C template seeded at startup.
const DefaultTemplateID = "default_d2c_template"

// seedDefinition is the compact literal form of a built-in KPI node.
// An empty ParentKpiID means root.
type seedDefinition struct {
	ID            string
	Agent         string
	Category      string
	Name          string
	Unit          string
	DefaultTarget float64
	BenchmarkMin  float64
	BenchmarkMax  float64
	Level         int
	ParentKpiID   string
	Description   string
}

// defaultKpiData is the canonical D2C KPI hierarchy:
// revenue = traffic x CVR x AOV x LTV, five levels deep.
var defaultKpiData = []seedDefinition{
	// KGI (top level)
	{ID: "kgi_001", Agent: model.AgentCommander, Category: "KGI", Name: "Annual revenue", Unit: "JPY", DefaultTarget: 1300000000, BenchmarkMin: 1000000000, BenchmarkMax: 1500000000, Level: 1, Description: "Annual revenue goal of 1.3B JPY. Revenue = traffic x CVR x AOV x LTV"},

	// Level 2: the four main drivers plus profit
	{ID: "drv_traffic", Agent: model.AgentAcquisition, Category: "Revenue drivers", Name: "Traffic", Unit: "sessions", DefaultTarget: 2000000, BenchmarkMin: 1500000, BenchmarkMax: 3000000, Level: 2, ParentKpiID: "kgi_001", Description: "Total sessions across all channels; the starting point of revenue"},
	{ID: "drv_cvr", Agent: model.AgentOperations, Category: "Revenue drivers", Name: "Conversion rate", Unit: "%", DefaultTarget: 3.5, BenchmarkMin: 2.0, BenchmarkMax: 5.0, Level: 2, ParentKpiID: "kgi_001", Description: "Share of visitors who purchase; improved through site optimization"},
	{ID: "drv_aov", Agent: model.AgentOperations, Category: "Revenue drivers", Name: "Average order value", Unit: "JPY", DefaultTarget: 5000, BenchmarkMin: 3000, BenchmarkMax: 8000, Level: 2, ParentKpiID: "kgi_001", Description: "Average amount per order; raised via cross-sell and upsell"},
	{ID: "drv_ltv", Agent: model.AgentEngagement, Category: "Revenue drivers", Name: "Customer lifetime value", Unit: "JPY", DefaultTarget: 15000, BenchmarkMin: 10000, BenchmarkMax: 25000, Level: 2, ParentKpiID: "kgi_001", Description: "Cumulative revenue per customer; raised via retention programs"},
	{ID: "drv_profit", Agent: model.AgentCommander, Category: "Profit", Name: "Gross profit", Unit: "JPY", DefaultTarget: 845000000, BenchmarkMin: 650000000, BenchmarkMax: 950000000, Level: 2, ParentKpiID: "kgi_001", Description: "Revenue minus cost of goods. D2C gross margin target: 60-70%"},

	// Level 3: traffic breakdown
	{ID: "trf_amazon", Agent: model.AgentAcquisition, Category: "Traffic by channel", Name: "Amazon traffic", Unit: "sessions", DefaultTarget: 800000, BenchmarkMin: 500000, BenchmarkMax: 1200000, Level: 3, ParentKpiID: "drv_traffic", Description: "Sessions on Amazon product pages"},
	{ID: "trf_rakuten", Agent: model.AgentAcquisition, Category: "Traffic by channel", Name: "Rakuten traffic", Unit: "sessions", DefaultTarget: 550000, BenchmarkMin: 350000, BenchmarkMax: 800000, Level: 3, ParentKpiID: "drv_traffic", Description: "Sessions on the Rakuten shop"},
	{ID: "trf_own", Agent: model.AgentAcquisition, Category: "Traffic by channel", Name: "Own EC traffic", Unit: "sessions", DefaultTarget: 600000, BenchmarkMin: 400000, BenchmarkMax: 900000, Level: 3, ParentKpiID: "drv_traffic", Description: "Sessions on the own e-commerce site"},
	{ID: "trf_b2b", Agent: model.AgentAcquisition, Category: "Traffic by channel", Name: "B2B leads", Unit: "count", DefaultTarget: 50000, BenchmarkMin: 30000, BenchmarkMax: 100000, Level: 3, ParentKpiID: "drv_traffic", Description: "B2B leads and inquiries"},
	{ID: "ads_total", Agent: model.AgentAcquisition, Category: "Ad investment", Name: "Total ad spend", Unit: "JPY", DefaultTarget: 144000000, BenchmarkMin: 100000000, BenchmarkMax: 200000000, Level: 3, ParentKpiID: "drv_traffic", Description: "Advertising investment across all channels"},

	// Level 3: CVR breakdown
	{ID: "cvr_amazon", Agent: model.AgentOperations, Category: "CVR by channel", Name: "Amazon CVR", Unit: "%", DefaultTarget: 4.0, BenchmarkMin: 2.5, BenchmarkMax: 6.0, Level: 3, ParentKpiID: "drv_cvr", Description: "Amazon purchase conversion. Typical: 3-5%"},
	{ID: "cvr_rakuten", Agent: model.AgentOperations, Category: "CVR by channel", Name: "Rakuten CVR", Unit: "%", DefaultTarget: 4.0, BenchmarkMin: 2.5, BenchmarkMax: 6.0, Level: 3, ParentKpiID: "drv_cvr", Description: "Rakuten purchase conversion. Typical: 3-5%"},
	{ID: "cvr_own", Agent: model.AgentOperations, Category: "CVR by channel", Name: "Own EC CVR", Unit: "%", DefaultTarget: 3.0, BenchmarkMin: 1.5, BenchmarkMax: 5.0, Level: 3, ParentKpiID: "drv_cvr", Description: "Own site purchase conversion. Typical: 2-4%"},
	{ID: "cvr_cart", Agent: model.AgentOperations, Category: "CVR improvement", Name: "Cart abandonment rate", Unit: "%", DefaultTarget: 70, BenchmarkMin: 60, BenchmarkMax: 80, Level: 3, ParentKpiID: "drv_cvr", Description: "Cart abandonment; lower is better. Typical: 65-75%"},

	// Level 3: AOV breakdown
	{ID: "aov_base", Agent: model.AgentOperations, Category: "Pricing", Name: "Average item price", Unit: "JPY", DefaultTarget: 5500, BenchmarkMin: 4000, BenchmarkMax: 7000, Level: 3, ParentKpiID: "drv_aov", Description: "Average selling price before discounts"},
	{ID: "aov_cross", Agent: model.AgentOperations, Category: "Pricing", Name: "Cross-sell rate", Unit: "%", DefaultTarget: 15, BenchmarkMin: 8, BenchmarkMax: 25, Level: 3, ParentKpiID: "drv_aov", Description: "Share of orders containing multiple items"},
	{ID: "aov_discount", Agent: model.AgentOperations, Category: "Pricing", Name: "Discount rate", Unit: "%", DefaultTarget: 10, BenchmarkMin: 5, BenchmarkMax: 20, Level: 3, ParentKpiID: "drv_aov", Description: "Average discount; keep under 15% to protect margin"},
	{ID: "aov_upsell", Agent: model.AgentOperations, Category: "Pricing", Name: "Upsell rate", Unit: "%", DefaultTarget: 10, BenchmarkMin: 5, BenchmarkMax: 20, Level: 3, ParentKpiID: "drv_aov", Description: "Conversion to higher-tier products"},

	// Level 3: LTV breakdown
	{ID: "ltv_repeat", Agent: model.AgentEngagement, Category: "Repeat", Name: "Repeat rate", Unit: "%", DefaultTarget: 40, BenchmarkMin: 25, BenchmarkMax: 55, Level: 3, ParentKpiID: "drv_ltv", Description: "Share of returning customers. D2C target: 35-50%"},
	{ID: "ltv_f2", Agent: model.AgentEngagement, Category: "Repeat", Name: "F2 conversion rate", Unit: "%", DefaultTarget: 30, BenchmarkMin: 20, BenchmarkMax: 45, Level: 3, ParentKpiID: "drv_ltv", Description: "First-to-second purchase conversion; key CRM metric"},
	{ID: "ltv_freq", Agent: model.AgentEngagement, Category: "Repeat", Name: "Purchase frequency", Unit: "orders/yr", DefaultTarget: 2.5, BenchmarkMin: 1.5, BenchmarkMax: 4.0, Level: 3, ParentKpiID: "drv_ltv", Description: "Orders per customer per year"},
	{ID: "ltv_interval", Agent: model.AgentEngagement, Category: "Repeat", Name: "Purchase interval", Unit: "days", DefaultTarget: 60, BenchmarkMin: 30, BenchmarkMax: 90, Level: 3, ParentKpiID: "drv_ltv", Description: "Average days between purchases; shorter is better"},
	{ID: "ltv_cac", Agent: model.AgentAcquisition, Category: "Unit economics", Name: "LTV/CAC ratio", Unit: "x", DefaultTarget: 3.0, BenchmarkMin: 2.0, BenchmarkMax: 5.0, Level: 3, ParentKpiID: "drv_ltv", Description: "Customer value vs. acquisition cost. Target: 3.0x or more"},

	// Level 3: profit breakdown
	{ID: "prf_margin", Agent: model.AgentCommander, Category: "Profit", Name: "Gross margin", Unit: "%", DefaultTarget: 65, BenchmarkMin: 55, BenchmarkMax: 72, Level: 3, ParentKpiID: "drv_profit", Description: "Gross profit over revenue. D2C target: 60-70%"},
	{ID: "prf_op", Agent: model.AgentCommander, Category: "Profit", Name: "Operating profit", Unit: "JPY", DefaultTarget: 195000000, BenchmarkMin: 130000000, BenchmarkMax: 260000000, Level: 3, ParentKpiID: "drv_profit", Description: "Gross profit minus SG&A; shows business profitability"},

	// Level 4: Amazon traffic breakdown
	{ID: "amz_ads", Agent: model.AgentAcquisition, Category: "Amazon ads", Name: "Amazon ad clicks", Unit: "clicks", DefaultTarget: 400000, BenchmarkMin: 250000, BenchmarkMax: 600000, Level: 4, ParentKpiID: "trf_amazon", Description: "Clicks from Amazon sponsored ads"},
	{ID: "amz_organic", Agent: model.AgentAcquisition, Category: "Amazon traffic", Name: "Amazon organic", Unit: "sessions", DefaultTarget: 400000, BenchmarkMin: 250000, BenchmarkMax: 600000, Level: 4, ParentKpiID: "trf_amazon", Description: "Organic inflow from Amazon search"},
	{ID: "amz_spend", Agent: model.AgentAcquisition, Category: "Amazon ads", Name: "Amazon ad spend", Unit: "JPY", DefaultTarget: 55000000, BenchmarkMin: 40000000, BenchmarkMax: 75000000, Level: 4, ParentKpiID: "trf_amazon", Description: "Investment into Amazon sponsored ads"},
	{ID: "amz_acos", Agent: model.AgentAcquisition, Category: "Amazon ads", Name: "ACoS", Unit: "%", DefaultTarget: 20, BenchmarkMin: 12, BenchmarkMax: 30, Level: 4, ParentKpiID: "trf_amazon", Description: "Ad spend over ad revenue. Target: under 25%"},

	// Level 4: Rakuten traffic breakdown
	{ID: "rkt_rpp", Agent: model.AgentAcquisition, Category: "Rakuten ads", Name: "RPP clicks", Unit: "clicks", DefaultTarget: 200000, BenchmarkMin: 120000, BenchmarkMax: 300000, Level: 4, ParentKpiID: "trf_rakuten", Description: "Clicks from Rakuten RPP ads"},
	{ID: "rkt_organic", Agent: model.AgentAcquisition, Category: "Rakuten traffic", Name: "Rakuten organic", Unit: "sessions", DefaultTarget: 350000, BenchmarkMin: 220000, BenchmarkMax: 500000, Level: 4, ParentKpiID: "trf_rakuten", Description: "Organic inflow from Rakuten search"},
	{ID: "rkt_spend", Agent: model.AgentAcquisition, Category: "Rakuten ads", Name: "Rakuten ad spend", Unit: "JPY", DefaultTarget: 35000000, BenchmarkMin: 25000000, BenchmarkMax: 50000000, Level: 4, ParentKpiID: "trf_rakuten", Description: "Investment into Rakuten RPP/CPC"},
	{ID: "rkt_roas", Agent: model.AgentAcquisition, Category: "Rakuten ads", Name: "Rakuten ROAS", Unit: "%", DefaultTarget: 500, BenchmarkMin: 350, BenchmarkMax: 700, Level: 4, ParentKpiID: "trf_rakuten", Description: "Return on Rakuten ad spend"},

	// Level 4: own EC traffic breakdown
	{ID: "own_paid", Agent: model.AgentAcquisition, Category: "Own EC ads", Name: "Google/Meta ads", Unit: "clicks", DefaultTarget: 300000, BenchmarkMin: 180000, BenchmarkMax: 450000, Level: 4, ParentKpiID: "trf_own", Description: "Paid traffic from Google and Meta ads"},
	{ID: "own_seo", Agent: model.AgentAcquisition, Category: "Own EC traffic", Name: "SEO organic", Unit: "sessions", DefaultTarget: 200000, BenchmarkMin: 120000, BenchmarkMax: 300000, Level: 4, ParentKpiID: "trf_own", Description: "Organic search inflow from Google/Yahoo"},
	{ID: "own_sns", Agent: model.AgentCreative, Category: "Own EC traffic", Name: "SNS/influencer", Unit: "sessions", DefaultTarget: 100000, BenchmarkMin: 50000, BenchmarkMax: 180000, Level: 4, ParentKpiID: "trf_own", Description: "Inflow from social media and influencers"},
	{ID: "own_affiliate", Agent: model.AgentAcquisition, Category: "Affiliate", Name: "Affiliate inflow", Unit: "sessions", DefaultTarget: 50000, BenchmarkMin: 30000, BenchmarkMax: 100000, Level: 4, ParentKpiID: "trf_own", Description: "Inflow via affiliates"},

	// Level 4: ad spend breakdown
	{ID: "ads_google", Agent: model.AgentAcquisition, Category: "Google ads", Name: "Google ad spend", Unit: "JPY", DefaultTarget: 30000000, BenchmarkMin: 20000000, BenchmarkMax: 45000000, Level: 4, ParentKpiID: "ads_total", Description: "Investment into Google search/shopping/display"},
	{ID: "ads_meta", Agent: model.AgentAcquisition, Category: "Meta ads", Name: "Meta ad spend", Unit: "JPY", DefaultTarget: 24000000, BenchmarkMin: 15000000, BenchmarkMax: 35000000, Level: 4, ParentKpiID: "ads_total", Description: "Investment into Facebook/Instagram ads"},
	{ID: "ads_cpa", Agent: model.AgentAcquisition, Category: "Ad efficiency", Name: "CPA", Unit: "JPY", DefaultTarget: 1846, BenchmarkMin: 1000, BenchmarkMax: 3000, Level: 4, ParentKpiID: "ads_total", Description: "Ad spend over conversions"},
	{ID: "ads_roas", Agent: model.AgentAcquisition, Category: "Ad efficiency", Name: "ROAS", Unit: "%", DefaultTarget: 450, BenchmarkMin: 300, BenchmarkMax: 600, Level: 4, ParentKpiID: "ads_total", Description: "Return on ad spend. Target: 400%+"},

	// Level 4: retention program breakdown
	{ID: "crm_email", Agent: model.AgentEngagement, Category: "CRM", Name: "Email subscribers", Unit: "people", DefaultTarget: 80000, BenchmarkMin: 50000, BenchmarkMax: 120000, Level: 4, ParentKpiID: "ltv_repeat", Description: "Active email subscribers"},
	{ID: "crm_line", Agent: model.AgentEngagement, Category: "CRM", Name: "LINE friends", Unit: "people", DefaultTarget: 50000, BenchmarkMin: 30000, BenchmarkMax: 80000, Level: 4, ParentKpiID: "ltv_repeat", Description: "Friends of the official LINE account"},
	{ID: "crm_app", Agent: model.AgentEngagement, Category: "CRM", Name: "App users", Unit: "people", DefaultTarget: 20000, BenchmarkMin: 10000, BenchmarkMax: 40000, Level: 4, ParentKpiID: "ltv_repeat", Description: "Active app users"},
	{ID: "ltv_f3", Agent: model.AgentEngagement, Category: "Repeat", Name: "F3+ conversion rate", Unit: "%", DefaultTarget: 50, BenchmarkMin: 35, BenchmarkMax: 65, Level: 4, ParentKpiID: "ltv_repeat", Description: "F2-to-F3+ conversion; loyal customer indicator"},

	// Level 4: operating profit breakdown
	{ID: "prf_op_margin", Agent: model.AgentCommander, Category: "Profit", Name: "Operating margin", Unit: "%", DefaultTarget: 15, BenchmarkMin: 10, BenchmarkMax: 20, Level: 4, ParentKpiID: "prf_op", Description: "Operating profit over revenue. Target: 15%+"},

	// Level 5: Google/Meta ad detail
	{ID: "google_roas", Agent: model.AgentAcquisition, Category: "Google ads", Name: "Google ROAS", Unit: "%", DefaultTarget: 400, BenchmarkMin: 280, BenchmarkMax: 550, Level: 5, ParentKpiID: "ads_google", Description: "Return on Google ad spend"},
	{ID: "meta_roas", Agent: model.AgentAcquisition, Category: "Meta ads", Name: "Meta ROAS", Unit: "%", DefaultTarget: 350, BenchmarkMin: 250, BenchmarkMax: 500, Level: 5, ParentKpiID: "ads_meta", Description: "Return on Meta ad spend"},

	// Level 5: email program detail
	{ID: "email_open", Agent: model.AgentEngagement, Category: "Email", Name: "Email open rate", Unit: "%", DefaultTarget: 25, BenchmarkMin: 15, BenchmarkMax: 40, Level: 5, ParentKpiID: "crm_email", Description: "Email open rate. Typical: 20-30%"},
	{ID: "email_ctr", Agent: model.AgentEngagement, Category: "Email", Name: "Email CTR", Unit: "%", DefaultTarget: 3, BenchmarkMin: 1.5, BenchmarkMax: 6, Level: 5, ParentKpiID: "crm_email", Description: "Email click-through rate. Typical: 2-5%"},
	{ID: "email_cvr", Agent: model.AgentEngagement, Category: "Email", Name: "Email CVR", Unit: "%", DefaultTarget: 2, BenchmarkMin: 1, BenchmarkMax: 4, Level: 5, ParentKpiID: "crm_email", Description: "Purchase conversion via email"},
	{ID: "email_rev", Agent: model.AgentEngagement, Category: "Email", Name: "Email-attributed revenue", Unit: "JPY", DefaultTarget: 80000000, BenchmarkMin: 50000000, BenchmarkMax: 120000000, Level: 5, ParentKpiID: "crm_email", Description: "Revenue attributed to email marketing"},

	// Level 5: LINE program detail
	{ID: "line_open", Agent: model.AgentEngagement, Category: "LINE", Name: "LINE open rate", Unit: "%", DefaultTarget: 60, BenchmarkMin: 40, BenchmarkMax: 80, Level: 5, ParentKpiID: "crm_line", Description: "LINE message open rate. Typical: 50-70%"},
	{ID: "line_ctr", Agent: model.AgentEngagement, Category: "LINE", Name: "LINE CTR", Unit: "%", DefaultTarget: 8, BenchmarkMin: 4, BenchmarkMax: 15, Level: 5, ParentKpiID: "crm_line", Description: "LINE click-through rate. Typical: 5-10%"},
	{ID: "line_cvr", Agent: model.AgentEngagement, Category: "LINE", Name: "LINE CVR", Unit: "%", DefaultTarget: 3, BenchmarkMin: 1.5, BenchmarkMax: 6, Level: 5, ParentKpiID: "crm_line", Description: "Purchase conversion via LINE"},
	{ID: "line_rev", Agent: model.AgentEngagement, Category: "LINE", Name: "LINE-attributed revenue", Unit: "JPY", DefaultTarget: 60000000, BenchmarkMin: 30000000, BenchmarkMax: 100000000, Level: 5, ParentKpiID: "crm_line", Description: "Revenue attributed to LINE marketing"},

	// Level 5: SNS/content detail
	{ID: "sns_ig", Agent: model.AgentCreative, Category: "SNS", Name: "Instagram followers", Unit: "people", DefaultTarget: 50000, BenchmarkMin: 20000, BenchmarkMax: 100000, Level: 5, ParentKpiID: "own_sns", Description: "Followers of the Instagram account"},
	{ID: "sns_engagement", Agent: model.AgentCreative, Category: "SNS", Name: "Engagement rate", Unit: "%", DefaultTarget: 3, BenchmarkMin: 2, BenchmarkMax: 6, Level: 5, ParentKpiID: "own_sns", Description: "SNS engagement rate. Typical: 2-4%"},
	{ID: "sns_ugc", Agent: model.AgentCreative, Category: "UGC", Name: "UGC posts", Unit: "posts", DefaultTarget: 1000, BenchmarkMin: 500, BenchmarkMax: 2000, Level: 5, ParentKpiID: "own_sns", Description: "User-generated content posts"},

	// Level 5: content/creative
	{ID: "crt_pages", Agent: model.AgentCreative, Category: "Content", Name: "Product pages", Unit: "pages", DefaultTarget: 100, BenchmarkMin: 50, BenchmarkMax: 200, Level: 5, ParentKpiID: "own_seo", Description: "Optimized product detail pages"},
	{ID: "crt_blog", Agent: model.AgentCreative, Category: "Content", Name: "Blog articles", Unit: "articles", DefaultTarget: 200, BenchmarkMin: 100, BenchmarkMax: 400, Level: 5, ParentKpiID: "own_seo", Description: "SEO-oriented blog articles"},

	// Level 5: operations
	{ID: "ops_stock", Agent: model.AgentOperations, Category: "Inventory", Name: "Days of inventory", Unit: "days", DefaultTarget: 45, BenchmarkMin: 30, BenchmarkMax: 60, Level: 5, ParentKpiID: "aov_base", Description: "Inventory turnover days. Target: 30-60 days"},
	{ID: "ops_stockout", Agent: model.AgentOperations, Category: "Inventory", Name: "Stockout rate", Unit: "%", DefaultTarget: 2, BenchmarkMin: 0, BenchmarkMax: 5, Level: 5, ParentKpiID: "aov_base", Description: "Out-of-stock rate. Target: under 3%"},
	{ID: "ops_delivery", Agent: model.AgentOperations, Category: "Fulfillment", Name: "Delivery days", Unit: "days", DefaultTarget: 2, BenchmarkMin: 1, BenchmarkMax: 3, Level: 5, ParentKpiID: "cvr_own", Description: "Average delivery lead time. Target: 1-2 days"},
	{ID: "ops_return", Agent: model.AgentOperations, Category: "Fulfillment", Name: "Return rate", Unit: "%", DefaultTarget: 3, BenchmarkMin: 1, BenchmarkMax: 5, Level: 5, ParentKpiID: "cvr_own", Description: "Product return rate. Target: under 5%"},

	// Level 5: customer analytics
	{ID: "ins_nps", Agent: model.AgentInsight, Category: "Analytics", Name: "NPS", Unit: "points", DefaultTarget: 40, BenchmarkMin: 20, BenchmarkMax: 60, Level: 5, ParentKpiID: "ltv_repeat", Description: "Net promoter score, -100 to +100. Good: 30+"},
	{ID: "ins_review", Agent: model.AgentInsight, Category: "Analytics", Name: "Review rating", Unit: "stars", DefaultTarget: 4.5, BenchmarkMin: 4.0, BenchmarkMax: 5.0, Level: 5, ParentKpiID: "ltv_repeat", Description: "Average review rating out of 5"},
	{ID: "ins_30d", Agent: model.AgentInsight, Category: "Cohorts", Name: "30-day retention", Unit: "%", DefaultTarget: 45, BenchmarkMin: 30, BenchmarkMax: 60, Level: 5, ParentKpiID: "ltv_freq", Description: "Customers repurchasing within 30 days"},
	{ID: "ins_90d", Agent: model.AgentInsight, Category: "Cohorts", Name: "90-day retention", Unit: "%", DefaultTarget: 25, BenchmarkMin: 15, BenchmarkMax: 40, Level: 5, ParentKpiID: "ltv_freq", Description: "Customers repurchasing within 90 days"},

	// Ad creative
	{ID: "crt_ads", Agent: model.AgentCreative, Category: "Ad creative", Name: "Active ad creatives", Unit: "assets", DefaultTarget: 100, BenchmarkMin: 50, BenchmarkMax: 200, Level: 5, ParentKpiID: "own_paid", Description: "Ad creatives currently live"},
	{ID: "crt_ctr", Agent: model.AgentCreative, Category: "Ad creative", Name: "Ad CTR", Unit: "%", DefaultTarget: 1.5, BenchmarkMin: 0.8, BenchmarkMax: 3.0, Level: 5, ParentKpiID: "own_paid", Description: "Ad click-through rate"},
}

// builtinDefinitions converts the seed list into unscoped KpiDefinition rows.
func builtinDefinitions() []model.KpiDefinition {
	defs := make([]model.KpiDefinition, 0, len(defaultKpiData))
	for _, s := range defaultKpiData {
		d := model.KpiDefinition{
			ID:            s.ID,
			Agent:         s.Agent,
			Category:      s.Category,
			Name:          s.Name,
			Unit:          s.Unit,
			DefaultTarget: f64(s.DefaultTarget),
			BenchmarkMin:  f64(s.BenchmarkMin),
			BenchmarkMax:  f64(s.BenchmarkMax),
			Level:         s.Level,
			Description:   s.Description,
		}
		if s.ParentKpiID != "" {
			parent := s.ParentKpiID
			d.ParentKpiID = &parent
		}
		defs = append(defs, d)
	}
	return defs
}

func f64(v float64) *float64 {
	return &v
}
