package ui

// Zone is an inclusive hit box in touch coordinates.
type Zone struct {
	Name       string
	XMin, XMax int
	YMin, YMax int
}

func (z Zone) Contains(p Point) bool {
	return z.XMin <= p.X && p.X <= z.XMax && z.YMin <= p.Y && p.Y <= z.YMax
}

const (
	ItemTemp        = "TEMP"
	ItemHumidity    = "HUMEDAD"
	ItemLight       = "LUZ"
	ItemSoil        = "SUELO"
	ItemIrrigation  = "RIEGO"
	ItemFertigation = "FERTIRRIEGO"
	ItemFan         = "VENTILADOR"
)

// menuZones are matched in order; TEMP overlaps LUZ and wins.
var menuZones = []Zone{
	{ItemTemp, 70, 110, 100, 115},
	{ItemLight, 70, 110, 65, 105},
	{ItemIrrigation, 65, 105, 40, 45},
	{ItemHumidity, 10, 50, 100, 115},
	{ItemSoil, 10, 50, 75, 85},
	{ItemFertigation, 10, 50, 40, 45},
	{ItemFan, 43, 87, 10, 12},
}

var (
	backZone = Zone{"VOLVER", 35, 80, 3, 15}
	onZone   = Zone{"ON", 69, 97, 48, 50}
	offZone  = Zone{"OFF", 34, 68, 47, 50}
)

// panelToZone converts a controller sample to zone coordinates; the panel is
// mounted with its axes swapped.
func panelToZone(p Point) Point { return Point{X: p.Y, Y: p.X} }

func hit(zones []Zone, p Point) (string, bool) {
	for _, z := range zones {
		if z.Contains(p) {
			return z.Name, true
		}
	}
	return "", false
}
