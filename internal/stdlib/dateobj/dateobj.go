// Package dateobj builds the Date constructor and Date.prototype,
// backed by Go's time.Time.
//
// This engine has no host timezone database access beyond what the Go
// runtime's "time" package already resolves, so the distinction JS draws
// between "local time" and UTC collapses to UTC for both: every
// Date method pair (getHours/getUTCHours, toString/toISOString, ...)
// reads through the same stored instant. This is documented as a
// behavioral approximation. The prototype carries only the methods
// installed below: there are no setUTC* setters and no toUTCString or
// toLocale* methods, and setHours/setMinutes/setSeconds read only their
// first argument.
package dateobj

import (
	"math"
	"time"

	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

const msPerDay = 86400000

// DateData is the [[DateValue]] internal slot: milliseconds since the
// Unix epoch, or NaN for an Invalid Date.
type DateData struct {
	ms float64
}

func Install(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	proto := values.NewObject(realm.ObjectProto)
	proto.Class = "Date"
	realm.DateProto = proto

	def := func(name string, length int, fn values.NativeFunc) {
		proto.DefineOwn(values.StringKey(name), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, name, length, fn)))
	}

	getMs := func(it *eval.Interpreter, this values.Value) (*DateData, error) {
		o, ok := this.(*values.Object)
		if !ok {
			return nil, it.NewThrow("TypeError", "not a Date")
		}
		dd, ok := o.Internal.(*DateData)
		if !ok {
			return nil, it.NewThrow("TypeError", "not a Date")
		}
		return dd, nil
	}

	field := func(name string, extract func(time.Time) float64) {
		def(name, 0, func(this values.Value, args []values.Value) (values.Value, error) {
			dd, err := getMs(it, this)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(dd.ms) {
				return values.Number(math.NaN()), nil
			}
			return values.Number(extract(msToTime(dd.ms))), nil
		})
	}
	field("getFullYear", func(t time.Time) float64 { return float64(t.Year()) })
	field("getUTCFullYear", func(t time.Time) float64 { return float64(t.Year()) })
	field("getMonth", func(t time.Time) float64 { return float64(t.Month() - 1) })
	field("getUTCMonth", func(t time.Time) float64 { return float64(t.Month() - 1) })
	field("getDate", func(t time.Time) float64 { return float64(t.Day()) })
	field("getUTCDate", func(t time.Time) float64 { return float64(t.Day()) })
	field("getDay", func(t time.Time) float64 { return float64(t.Weekday()) })
	field("getUTCDay", func(t time.Time) float64 { return float64(t.Weekday()) })
	field("getHours", func(t time.Time) float64 { return float64(t.Hour()) })
	field("getUTCHours", func(t time.Time) float64 { return float64(t.Hour()) })
	field("getMinutes", func(t time.Time) float64 { return float64(t.Minute()) })
	field("getUTCMinutes", func(t time.Time) float64 { return float64(t.Minute()) })
	field("getSeconds", func(t time.Time) float64 { return float64(t.Second()) })
	field("getUTCSeconds", func(t time.Time) float64 { return float64(t.Second()) })
	field("getMilliseconds", func(t time.Time) float64 { return float64(t.Nanosecond() / 1e6) })
	field("getUTCMilliseconds", func(t time.Time) float64 { return float64(t.Nanosecond() / 1e6) })

	def("getTimezoneOffset", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		return values.Number(0), nil
	})
	def("getTime", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		dd, err := getMs(it, this)
		if err != nil {
			return nil, err
		}
		return values.Number(dd.ms), nil
	})
	def("valueOf", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		dd, err := getMs(it, this)
		if err != nil {
			return nil, err
		}
		return values.Number(dd.ms), nil
	})
	def("setTime", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		dd, err := getMs(it, this)
		if err != nil {
			return nil, err
		}
		n, err := it.ToNumber(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		dd.ms = n
		return values.Number(dd.ms), nil
	})

	setField := func(name string, apply func(time.Time, []float64) time.Time, argc int) {
		def(name, argc, func(this values.Value, args []values.Value) (values.Value, error) {
			dd, err := getMs(it, this)
			if err != nil {
				return nil, err
			}
			base := msToTime(dd.ms)
			if math.IsNaN(dd.ms) {
				base = msToTime(0)
			}
			nums := make([]float64, len(args))
			for i, a := range args {
				n, err := it.ToNumber(a)
				if err != nil {
					return nil, err
				}
				nums[i] = n
			}
			dd.ms = timeToMs(apply(base, nums))
			return values.Number(dd.ms), nil
		})
	}
	setField("setFullYear", func(t time.Time, n []float64) time.Time {
		return replaceDate(t, int(n[0]), monthArg(t, n, 1), dayArg(t, n, 2))
	}, 3)
	setField("setMonth", func(t time.Time, n []float64) time.Time {
		return replaceDate(t, t.Year(), int(n[0]), dayArg(t, n, 1))
	}, 2)
	setField("setDate", func(t time.Time, n []float64) time.Time {
		return replaceDate(t, t.Year(), int(t.Month())-1, int(n[0]))
	}, 1)
	setField("setHours", func(t time.Time, n []float64) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), int(n[0]), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}, 1)
	setField("setMinutes", func(t time.Time, n []float64) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), int(n[0]), t.Second(), t.Nanosecond(), time.UTC)
	}, 1)
	setField("setSeconds", func(t time.Time, n []float64) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), int(n[0]), t.Nanosecond(), time.UTC)
	}, 1)
	setField("setMilliseconds", func(t time.Time, n []float64) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), int(n[0])*1e6, time.UTC)
	}, 1)

	def("toISOString", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		dd, err := getMs(it, this)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(dd.ms) {
			return nil, it.NewThrow("RangeError", "Invalid time value")
		}
		return values.String(msToTime(dd.ms).Format("2006-01-02T15:04:05.000Z")), nil
	})
	def("toJSON", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		dd, err := getMs(it, this)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(dd.ms) {
			return values.TheNull, nil
		}
		return values.String(msToTime(dd.ms).Format("2006-01-02T15:04:05.000Z")), nil
	})
	toStr := func(this values.Value, args []values.Value) (values.Value, error) {
		dd, err := getMs(it, this)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(dd.ms) {
			return values.String("Invalid Date"), nil
		}
		return values.String(msToTime(dd.ms).Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")), nil
	}
	def("toString", 0, toStr)
	def("toDateString", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		dd, err := getMs(it, this)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(dd.ms) {
			return values.String("Invalid Date"), nil
		}
		return values.String(msToTime(dd.ms).Format("Mon Jan 02 2006")), nil
	})
	def("toTimeString", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		dd, err := getMs(it, this)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(dd.ms) {
			return values.String("Invalid Date"), nil
		}
		return values.String(msToTime(dd.ms).Format("15:04:05 GMT+0000 (Coordinated Universal Time)")), nil
	})

	fd := &values.FunctionData{
		Kind: values.FuncConstructor, Name: "Date", Length: 7,
		Native: func(this values.Value, args []values.Value) (values.Value, error) {
			return values.String(time.Now().UTC().Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")), nil
		},
		NativeConstruct: func(args []values.Value) (values.Value, error) {
			o := values.NewObject(proto)
			o.Class = "Date"
			var ms float64
			switch len(args) {
			case 0:
				ms = float64(time.Now().UnixMilli())
			case 1:
				v := args[0]
				if s, ok := v.(values.String); ok {
					ms = parseDate(string(s))
				} else {
					n, err := it.ToNumber(v)
					if err != nil {
						return nil, err
					}
					if o2, ok := v.(*values.Object); ok {
						if dd2, ok := o2.Internal.(*DateData); ok {
							n = dd2.ms
						}
					}
					ms = n
				}
			default:
				nums := make([]float64, len(args))
				for i, a := range args {
					n, err := it.ToNumber(a)
					if err != nil {
						return nil, err
					}
					nums[i] = n
				}
				year := int(nums[0])
				if year >= 0 && year <= 99 {
					year += 1900
				}
				month := int(nums[1])
				day := 1
				if len(nums) > 2 {
					day = int(nums[2])
				}
				hour, min, sec, msec := 0, 0, 0, 0
				if len(nums) > 3 {
					hour = int(nums[3])
				}
				if len(nums) > 4 {
					min = int(nums[4])
				}
				if len(nums) > 5 {
					sec = int(nums[5])
				}
				if len(nums) > 6 {
					msec = int(nums[6])
				}
				t := time.Date(year, time.Month(month+1), day, hour, min, sec, msec*1e6, time.UTC)
				ms = timeToMs(t)
			}
			o.Internal = &DateData{ms: ms}
			return o, nil
		},
	}
	ctor := values.NewFunctionObject(realm.FunctionProto, fd, true, proto)
	ctor.DefineOwn(values.StringKey("prototype"), &values.PropertyDescriptor{Value: proto})
	ctor.DefineOwn(values.StringKey("now"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "now", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		return values.Number(float64(time.Now().UnixMilli())), nil
	})))
	ctor.DefineOwn(values.StringKey("parse"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "parse", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		return values.Number(parseDate(s)), nil
	})))
	ctor.DefineOwn(values.StringKey("UTC"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "UTC", 7, func(this values.Value, args []values.Value) (values.Value, error) {
		if len(args) == 0 {
			return values.Number(math.NaN()), nil
		}
		nums := make([]float64, len(args))
		for i, a := range args {
			n, err := it.ToNumber(a)
			if err != nil {
				return nil, err
			}
			nums[i] = n
		}
		year := int(nums[0])
		if year >= 0 && year <= 99 {
			year += 1900
		}
		month := 0
		if len(nums) > 1 {
			month = int(nums[1])
		}
		day := 1
		if len(nums) > 2 {
			day = int(nums[2])
		}
		var hms [4]int // hours, minutes, seconds, milliseconds
		for i := 3; i < len(nums) && i < 7; i++ {
			hms[i-3] = int(nums[i])
		}
		t := time.Date(year, time.Month(month+1), day, hms[0], hms[1], hms[2], hms[3]*1e6, time.UTC)
		return values.Number(timeToMs(t)), nil
	})))

	global.DefineOwn(values.StringKey("Date"), values.DataProperty(ctor))
}

func msToTime(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

func timeToMs(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func replaceDate(t time.Time, year, month, day int) time.Time {
	return time.Date(year, time.Month(month+1), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func monthArg(t time.Time, n []float64, i int) int {
	if i < len(n) {
		return int(n[i])
	}
	return int(t.Month()) - 1
}

func dayArg(t time.Time, n []float64, i int) int {
	if i < len(n) {
		return int(n[i])
	}
	return t.Day()
}

func parseDate(s string) float64 {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"Mon Jan 02 2006 15:04:05 GMT-0700 (MST)",
		time.RFC1123,
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return timeToMs(t.UTC())
		}
	}
	return math.NaN()
}

func argAt(args []values.Value, i int) values.Value {
	if i < len(args) {
		return args[i]
	}
	return values.TheUndefined
}
