package repository

import "time"

// Field readers for store records. Optional columns come back as nil,
// a plain value, or a pointer depending on the backing implementation;
// these normalize all three.

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case *string:
		if val != nil {
			return *val
		}
	}
	return ""
}

func asStringPtr(v any) *string {
	switch val := v.(type) {
	case string:
		s := val
		return &s
	case *string:
		if val == nil {
			return nil
		}
		s := *val
		return &s
	}
	return nil
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val != nil {
			return *val
		}
	}
	return time.Time{}
}

func asTimePtr(v any) *time.Time {
	switch val := v.(type) {
	case time.Time:
		t := val
		return &t
	case *time.Time:
		if val == nil {
			return nil
		}
		t := *val
		return &t
	}
	return nil
}
