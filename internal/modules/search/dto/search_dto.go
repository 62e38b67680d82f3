package dto

type ProjectSearchFilter struct {
	Status    string `form:"status"`
	Skills    string `form:"skills"` // comma separated
	Budget    string `form:"budget"` // "min-max", either side optional
	StartDate string `form:"startDate"`
}

type CompanySearchFilter struct {
	Keyword  string `form:"keyword"`
	Industry string `form:"industry"`
	Location string `form:"location"`
	Size     string `form:"size"` // "min-max"
}

type EngineerSearchFilter struct {
	Keyword       string `form:"keyword"`
	Skills        string `form:"skills"` // comma separated
	MinExperience int    `form:"minExperience"`
}

type BlogSearchFilter struct {
	Keyword string `form:"keyword"`
}
