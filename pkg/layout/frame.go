package layout

import "github.com/matzehuels/knitstack/pkg/knit"

// Frame is the drawable layout of one step.
type Frame struct {
	Step    int         `json:"step"`
	Label   string      `json:"label"`
	Racking int         `json:"racking"`
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Needles []NeedleBox `json:"needles"`
	Items   []ItemBox   `json:"items"`
	Links   []LinkPath  `json:"links"`
	Slacks  []SlackUse  `json:"slacks,omitempty"`
	Anchors []Anchor    `json:"anchors"`
	Tiles   []TileBox   `json:"tiles,omitempty"`
}

// NeedleBox is the body of one needle.
type NeedleBox struct {
	Needle string `json:"needle"`
	Box    Rect   `json:"box"`
}

// ItemBox is one stack item. Base markers have no box.
type ItemBox struct {
	ID     knit.ItemID `json:"id"`
	Kind   string      `json:"kind"`
	Needle string      `json:"needle"`
	Moved  bool        `json:"moved,omitempty"`
	Box    Rect        `json:"box"`
}

// Point is a position in frame coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LinkPath is a straight yarn run between two ports.
type LinkPath struct {
	ID       knit.LinkID `json:"id"`
	FromItem knit.ItemID `json:"from_item"`
	ToItem   knit.ItemID `json:"to_item"`
	From     Point       `json:"from"`
	To       Point       `json:"to"`
	// Slack is the slack bucket id, or -1 when the link has none.
	Slack int `json:"slack"`
	// Strain is current/length of the slack bucket: the summed horizontal
	// span of every link sharing it divided by its length budget.
	Strain float64 `json:"strain,omitempty"`
}

// SlackUse is a slack bucket used by the frame's links.
type SlackUse struct {
	ID      knit.SlackID `json:"id"`
	Length  float64      `json:"length"`
	Current float64      `json:"current"`
}

// Anchor is the relaxed fabric position of a loop.
type Anchor struct {
	Item knit.ItemID `json:"item"`
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
}

// TileBox is a positioned card tile.
type TileBox struct {
	Label string `json:"label"`
	Box   Rect   `json:"box"`
}

// Card is one stitch operation's footprint, stacked by the card layout.
type Card struct {
	Label string `json:"label"`
	Slots []Slot `json:"slots"`
}

// Item returns the box of the item with the given id.
func (f Frame) Item(id knit.ItemID) (ItemBox, bool) {
	for _, it := range f.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ItemBox{}, false
}
