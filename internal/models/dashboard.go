package models

// Dashboard is the per-user persisted set of widgets plus their grid
// placement. One document per user, created implicitly on first save.
// Invariant: widgets and layout reference each other one-to-one.
type Dashboard struct {
	Widgets []Widget     `firestore:"widgets" json:"widgets"`
	Layout  []LayoutItem `firestore:"layout" json:"layout"`
}

// LayoutItem is one grid placement rectangle, keyed by widget id.
type LayoutItem struct {
	WidgetID string `firestore:"widgetId" json:"widgetId"`
	X        int    `firestore:"x" json:"x"`
	Y        int    `firestore:"y" json:"y"`
	W        int    `firestore:"w" json:"w"`
	H        int    `firestore:"h" json:"h"`
	MinW     int    `firestore:"minW" json:"minW"`
	MinH     int    `firestore:"minH" json:"minH"`
}

// Widget returns the widget with the given id, or nil.
func (d *Dashboard) Widget(widgetID string) *Widget {
	for i := range d.Widgets {
		if d.Widgets[i].WidgetID == widgetID {
			return &d.Widgets[i]
		}
	}
	return nil
}

// LayoutFor returns the layout entry for the given widget id, or nil.
func (d *Dashboard) LayoutFor(widgetID string) *LayoutItem {
	for i := range d.Layout {
		if d.Layout[i].WidgetID == widgetID {
			return &d.Layout[i]
		}
	}
	return nil
}
