package domain

// ResultSet holds the four image slots shown by the dashboard.
// A nil random image is absent; image lists are never nil once written.
type ResultSet struct {
	RandomByCategory    *ImageRecord
	RandomBySubCategory *ImageRecord
	ImagesByCategory    *ImageList
	ImagesBySubCategory *ImageList
}

// NewResultSet returns a result set with empty lists.
func NewResultSet() ResultSet {
	return ResultSet{
		ImagesByCategory:    EmptyImageList(),
		ImagesBySubCategory: EmptyImageList(),
	}
}
