package breakdown

// #region rows
// DayCounts is one point of the decision time series.
type DayCounts struct {
	Date    string `json:"date"`
	Block   int    `json:"block"`
	Suggest int    `json:"suggest"`
	Allow   int    `json:"allow"`
}

// CategoryCount is the number of records in one policy category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// BandCount is the number of records with one decision.
type BandCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// SliceRate is the block rate within one slice.
type SliceRate struct {
	Slice     string  `json:"slice"`
	BlockRate float64 `json:"blockRate"`
}

// #endregion rows
