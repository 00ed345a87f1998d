// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"fmt"
	"time"
)

const (
	secsPerDay      = 24 * 60 * 60
	microSecsPerSec = 1000000
)

type T uint8

const (
	// any family
	T_any T = 0

	// bool family
	T_bool T = 10

	// numeric/integer family
	T_int8   T = 20
	T_int16  T = 21
	T_int32  T = 22
	T_int64  T = 23
	T_uint8  T = 25
	T_uint16 T = 26
	T_uint32 T = 27
	T_uint64 T = 28

	// numeric/float family
	T_float32 T = 30
	T_float64 T = 31

	// date family
	T_date     T = 50
	T_datetime T = 52

	// string family
	T_char    T = 60
	T_varchar T = 61
)

type Type struct {
	Oid T
	// Size of type in bytes, 0 for variable length types
	Size int32
}

// Date is the number of days since 0001-01-01.
type Date int32

// Datetime is the number of microseconds since 0001-01-01 00:00:00.
type Datetime int64

type Ints interface {
	int8 | int16 | int32 | int64
}

type UInts interface {
	uint8 | uint16 | uint32 | uint64
}

type Floats interface {
	float32 | float64
}

type Number interface {
	Ints | UInts | Floats
}

type FixedSizeT interface {
	bool | Number | Date | Datetime
}

func New(oid T) Type {
	return Type{Oid: oid, Size: int32(TypeSize(oid))}
}

func (t T) ToType() Type {
	return New(t)
}

// IsFixedLen returns true if the values of the type have a fixed width.
func (t T) IsFixedLen() bool {
	return t != T_char && t != T_varchar && t != T_any
}

// ToPhysical returns the oid of the representation used to hash and
// compare values: temporal types collapse to their integer encoding and
// char collapses to varchar.
func (t T) ToPhysical() T {
	switch t {
	case T_date:
		return T_int32
	case T_datetime:
		return T_int64
	case T_char:
		return T_varchar
	default:
		return t
	}
}

func (t T) String() string {
	switch t {
	case T_any:
		return "ANY"
	case T_bool:
		return "BOOL"
	case T_int8:
		return "TINYINT"
	case T_int16:
		return "SMALLINT"
	case T_int32:
		return "INT"
	case T_int64:
		return "BIGINT"
	case T_uint8:
		return "TINYINT UNSIGNED"
	case T_uint16:
		return "SMALLINT UNSIGNED"
	case T_uint32:
		return "INT UNSIGNED"
	case T_uint64:
		return "BIGINT UNSIGNED"
	case T_float32:
		return "FLOAT"
	case T_float64:
		return "DOUBLE"
	case T_date:
		return "DATE"
	case T_datetime:
		return "DATETIME"
	case T_char:
		return "CHAR"
	case T_varchar:
		return "VARCHAR"
	}
	return fmt.Sprintf("unexpected type: %d", t)
}

func (t T) OidString() string {
	switch t {
	case T_any:
		return "T_any"
	case T_bool:
		return "T_bool"
	case T_int8:
		return "T_int8"
	case T_int16:
		return "T_int16"
	case T_int32:
		return "T_int32"
	case T_int64:
		return "T_int64"
	case T_uint8:
		return "T_uint8"
	case T_uint16:
		return "T_uint16"
	case T_uint32:
		return "T_uint32"
	case T_uint64:
		return "T_uint64"
	case T_float32:
		return "T_float32"
	case T_float64:
		return "T_float64"
	case T_date:
		return "T_date"
	case T_datetime:
		return "T_datetime"
	case T_char:
		return "T_char"
	case T_varchar:
		return "T_varchar"
	}
	return "unknown_type"
}

// TypeSize returns the width in bytes of a fixed length type.
func TypeSize(oid T) int {
	switch oid {
	case T_bool, T_int8, T_uint8:
		return 1
	case T_int16, T_uint16:
		return 2
	case T_int32, T_uint32, T_float32, T_date:
		return 4
	case T_int64, T_uint64, T_float64, T_datetime:
		return 8
	}
	return 0
}

func (t Type) String() string {
	return t.Oid.String()
}

func (t Type) Eq(b Type) bool {
	return t.Oid == b.Oid && t.Size == b.Size
}

func (t Type) IsFixedLen() bool {
	return t.Oid.IsFixedLen()
}

func (t Type) TypeSize() int {
	return int(t.Size)
}

var epochUnix = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

// ParseDate parses a date in the 2006-01-02 layout.
func ParseDate(s string) (Date, error) {
	tm, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return 0, err
	}
	return Date((tm.Unix() - epochUnix) / secsPerDay), nil
}

func (d Date) String() string {
	return time.Unix(epochUnix+int64(d)*secsPerDay, 0).UTC().Format("2006-01-02")
}

// ParseDatetime parses a datetime in the 2006-01-02 15:04:05 layout with
// optional fractional seconds.
func ParseDatetime(s string) (Datetime, error) {
	tm, err := time.ParseInLocation("2006-01-02 15:04:05.999999", s, time.UTC)
	if err != nil {
		return 0, err
	}
	return Datetime((tm.Unix()-epochUnix)*microSecsPerSec + int64(tm.Nanosecond()/1000)), nil
}

func (dt Datetime) String() string {
	secs, us := int64(dt)/microSecsPerSec, int64(dt)%microSecsPerSec
	tm := time.Unix(epochUnix+secs, us*1000).UTC()
	if us == 0 {
		return tm.Format("2006-01-02 15:04:05")
	}
	return tm.Format("2006-01-02 15:04:05.000000")
}
