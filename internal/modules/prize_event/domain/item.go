package domain

// Item is a catalog entry eligible for round outcomes.
// Name is the stable join key between wagers, overrides and outcomes;
// everything else is display metadata.
type Item struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Label string `json:"label"`
	Desc  string `json:"desc"`
}

// Catalog is the fixed list of items eligible for outcomes
type Catalog []Item

// DefaultCatalog matches the four items of the live event.
// History rows copy name and icon directly, so editing this list
// never rewrites past outcomes.
var DefaultCatalog = Catalog{
	{Name: "rocket", Icon: "🚀", Color: "#6366f1", Label: "x2.0 / x4.0", Desc: "High Score Chance"},
	{Name: "heart", Icon: "❤️", Color: "#f43f5e", Label: "x2.0 / x4.0", Desc: "Symbol of Luck"},
	{Name: "yacht", Icon: "🚢", Color: "#0ea5e9", Label: "x2.0 / x4.0", Desc: "Premium Pick"},
	{Name: "rose", Icon: "🌹", Color: "#ef4444", Label: "x2.0 / x4.0", Desc: "Passion Payout"},
}

// Find returns the catalog entry for a name
func (c Catalog) Find(name string) (Item, bool) {
	for _, item := range c {
		if item.Name == name {
			return item, true
		}
	}
	return Item{}, false
}

// Contains reports whether the catalog has an item with the given name
func (c Catalog) Contains(name string) bool {
	_, ok := c.Find(name)
	return ok
}
