package models

// Hotel, Package and Destination are read-only catalog rows. Price is the
// display string editors type in, e.g. "$1,200".
type Hotel struct {
	ID       string  `gorm:"column:id;primaryKey"`
	Name     string  `gorm:"column:name;not null"`
	Location string  `gorm:"column:location"`
	Price    *string `gorm:"column:price"`
	ImageURL *string `gorm:"column:image_url"`
}

func (Hotel) TableName() string { return "hotels" }

type Package struct {
	ID       string  `gorm:"column:id;primaryKey"`
	Title    string  `gorm:"column:title;not null"`
	Location string  `gorm:"column:location"`
	Price    *string `gorm:"column:price"`
	ImageURL *string `gorm:"column:image_url"`
}

func (Package) TableName() string { return "packages" }

type Destination struct {
	ID       string  `gorm:"column:id;primaryKey"`
	Name     string  `gorm:"column:name;not null"`
	Location string  `gorm:"column:location"`
	Price    *string `gorm:"column:price"`
	ImageURL *string `gorm:"column:image_url"`
}

func (Destination) TableName() string { return "destinations" }
