package content

// Location is one entry in the gazetteer of places the narrative
// moves through.  The catalog is small and editorial, so it lives in
// code rather than the database.
type Location struct {
    ID           string `json:"id"`
    Name         string `json:"name"`
    Region       string `json:"region"`
    Description  string `json:"description"`
    Significance string `json:"significance,omitempty"`
    Image        string `json:"image,omitempty"`
}

var locations = []Location{
    {
        ID:           "jerusalem",
        Name:         "Jerusalem",
        Region:       "Judea",
        Description:  "The heart of 1st century Judea — a city of pilgrimage, power, and profound tension under Roman occupation.",
        Significance: "Central setting for the crucifixion, resurrection, and the clash between Roman authority and divine truth.",
    },
    {
        ID:           "golgotha",
        Name:         "Golgotha",
        Region:       "Jerusalem",
        Description:  "The place of the skull — an execution ground outside Jerusalem's walls where the crucifixion unfolds.",
        Significance: "Where Longinus pierces Christ's side and receives his sight; where divine light meets state violence.",
        Image:        "/images/Locations/Golgotha.jpg",
    },
    {
        ID:           "praetorium",
        Name:         "The Praetorium",
        Region:       "Jerusalem",
        Description:  "The Roman governor's residence and military headquarters in Jerusalem.",
        Significance: "Site of the scourging and judgment; where Roman authority confronts the accused.",
        Image:        "/images/Locations/Praetorium.jpg",
    },
    {
        ID:           "temple",
        Name:         "The Temple",
        Region:       "Jerusalem",
        Description:  "The heart of Jewish religious life — where Malchus serves and where authority and faith intersect.",
        Significance: "Center of religious power; base for secret believers who protect resurrection witnesses.",
        Image:        "/images/Locations/the-temple.jpg",
    },
    {
        ID:           "judean-desert",
        Name:         "Judean Desert",
        Region:       "Judea",
        Description:  "Harsh wilderness where Roman cohorts march — a landscape of merciless sun and hidden danger.",
        Significance: "Where the Death Squad's march begins; backdrop for Longinus's journey into the story.",
    },
    {
        ID:           "beth-horon",
        Name:         "Beth-Horon Pass",
        Region:       "Judea",
        Description:  "A narrow mountain pass where Roman forces faced catastrophic ambush.",
        Significance: "Where Cestius Gallus's army was destroyed; a turning point in the occupation.",
    },
    {
        ID:           "mount-gerizim",
        Name:         "Mount Gerizim",
        Region:       "Samaria",
        Description:  "The holy mountain of the Samaritans, rising over the road north out of Judea.",
        Significance: "A waypoint on the escape routes; neutral ground where Roman writ runs thin.",
    },
}

// AllLocations returns the full gazetteer in editorial order.
func AllLocations() []Location {
    out := make([]Location, len(locations))
    copy(out, locations)
    return out
}

// LocationByID looks up one location.
func LocationByID(id string) (Location, bool) {
    for _, l := range locations {
        if l.ID == id {
            return l, true
        }
    }
    return Location{}, false
}
