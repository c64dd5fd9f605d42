package pattern

// UsageTable lists each test with the resources it touched.
type UsageTable struct {
	Label string
	Rows  []UsageRow
}

// UsageRow is one test and its records, in invocation order.
type UsageRow struct {
	Test      string
	Resources []UsageResource
}

// UsageResource is one record as displayed.
type UsageResource struct {
	Kind string
	Name string
}

func (u *UsageTable) Type() PatternType { return PatternTypeUsageTable }
