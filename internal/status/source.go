package status

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ItsNotGoodName/xtile/internal/config"
)

// Source is where a segment gets its value. It is one of Static, Command,
// RAM, DateTime or Battery.
type Source interface {
	isSource()
}

type (
	// Static text never changes.
	Static string
	// Command runs argv off the event loop and takes the first line of its
	// standard output.
	Command []string
	// RAM samples memory usage. Placeholders are {used} and {total} in GiB.
	RAM struct{}
	// DateTime formats the current time with a Go time layout.
	DateTime string
	// Battery reads a power supply. The format is picked by charging state
	// and {} is the capacity in percent.
	Battery struct {
		Name        string
		Charging    string
		Discharging string
		Full        string
	}
)

func (Static) isSource()   {}
func (Command) isSource()  {}
func (RAM) isSource()      {}
func (DateTime) isSource() {}
func (Battery) isSource()  {}

// Spec describes one segment.
type Spec struct {
	Format    string
	Source    Source
	Interval  time.Duration
	Color     uint32
	Underline bool
}

// FromConfig converts configured blocks to segment specs.
func FromConfig(blocks []config.Block) []Spec {
	specs := make([]Spec, 0, len(blocks))
	for _, b := range blocks {
		var src Source
		switch {
		case b.Static != nil:
			src = Static(*b.Static)
		case len(b.Command) > 0:
			src = Command(b.Command)
		case b.Shell != "":
			src = Command{"sh", "-c", b.Shell}
		case b.RAM:
			src = RAM{}
		case b.DateTime != "":
			src = DateTime(b.DateTime)
		case b.Battery != nil:
			src = Battery{
				Name:        b.Battery.Name,
				Charging:    b.Battery.Charging,
				Discharging: b.Battery.Discharging,
				Full:        b.Battery.Full,
			}
		default:
			continue
		}
		specs = append(specs, Spec{
			Format:    b.Format,
			Source:    src,
			Interval:  b.Interval.Std(),
			Color:     uint32(b.Color),
			Underline: b.Underline,
		})
	}
	return specs
}

// Render substitutes placeholders in format. "{}" is replaced with value and
// "{key}" with vars[key]. A format without placeholders gets value appended.
func Render(format string, value string, vars map[string]string) string {
	if !strings.Contains(format, "{") {
		return format + value
	}

	var b strings.Builder
	for {
		i := strings.IndexByte(format, '{')
		if i == -1 {
			b.WriteString(format)
			break
		}
		j := strings.IndexByte(format[i:], '}')
		if j == -1 {
			b.WriteString(format)
			break
		}
		b.WriteString(format[:i])
		key := format[i+1 : i+j]
		if key == "" {
			b.WriteString(value)
		} else if v, ok := vars[key]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(format[i : i+j+1])
		}
		format = format[i+j+1:]
	}
	return b.String()
}

func formatGiB(kib uint64) string {
	return strconv.FormatFloat(float64(kib)/(1024*1024), 'f', 1, 64)
}

func renderRAM(format string, m MemInfo) string {
	used, total := formatGiB(m.Used()), formatGiB(m.TotalKiB)
	return Render(format, used+"/"+total, map[string]string{
		"used":  used,
		"total": total,
	})
}

func renderBattery(format string, src Battery, info BatteryInfo) string {
	var inner string
	switch info.Status {
	case "Charging":
		inner = src.Charging
	case "Full", "Not charging":
		inner = src.Full
	default:
		inner = src.Discharging
	}
	capacity := strconv.Itoa(info.Capacity)
	value := Render(inner, capacity, map[string]string{
		"capacity": capacity,
		"status":   info.Status,
	})
	return Render(format, value, nil)
}

func describe(src Source) string {
	switch v := src.(type) {
	case Static:
		return "static"
	case Command:
		return "command " + strings.Join(v, " ")
	case RAM:
		return "ram"
	case DateTime:
		return "datetime"
	case Battery:
		return "battery"
	default:
		return fmt.Sprintf("%T", v)
	}
}
