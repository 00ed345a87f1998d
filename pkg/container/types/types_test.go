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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestType_String(t *testing.T) {
	myType := T_int64.ToType()
	require.Equal(t, "BIGINT", myType.String())
}

func TestType_Eq(t *testing.T) {
	myType := T_int64.ToType()
	myType1 := T_int64.ToType()
	require.True(t, myType.Eq(myType1))
	require.False(t, myType.Eq(T_int32.ToType()))
}

func TestT_ToType(t *testing.T) {
	require.Equal(t, int32(1), T_int8.ToType().Size)
	require.Equal(t, int32(2), T_int16.ToType().Size)
	require.Equal(t, int32(4), T_int32.ToType().Size)
	require.Equal(t, int32(8), T_int64.ToType().Size)
	require.Equal(t, int32(1), T_uint8.ToType().Size)
	require.Equal(t, int32(2), T_uint16.ToType().Size)
	require.Equal(t, int32(4), T_uint32.ToType().Size)
	require.Equal(t, int32(8), T_uint64.ToType().Size)
	require.Equal(t, int32(4), T_date.ToType().Size)
	require.Equal(t, int32(0), T_varchar.ToType().Size)
}

func TestT_OidString(t *testing.T) {
	require.Equal(t, "T_int8", T_int8.OidString())
	require.Equal(t, "T_int64", T_int64.OidString())
	require.Equal(t, "T_uint64", T_uint64.OidString())
	require.Equal(t, "T_float64", T_float64.OidString())
	require.Equal(t, "T_varchar", T_varchar.OidString())
}

func TestT_ToPhysical(t *testing.T) {
	require.Equal(t, T_int32, T_date.ToPhysical())
	require.Equal(t, T_int64, T_datetime.ToPhysical())
	require.Equal(t, T_varchar, T_char.ToPhysical())
	require.Equal(t, T_int64, T_int64.ToPhysical())
	require.Equal(t, T_float64, T_float64.ToPhysical())
	require.True(t, T_int64.IsFixedLen())
	require.False(t, T_varchar.IsFixedLen())
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	require.Equal(t, "2024-02-29", d.String())

	d0, err := ParseDate("0001-01-01")
	require.NoError(t, err)
	require.Equal(t, Date(0), d0)

	d1, err := ParseDate("0001-01-02")
	require.NoError(t, err)
	require.Equal(t, Date(1), d1)

	_, err = ParseDate("2024-13-01")
	require.Error(t, err)
}

func TestDatetime(t *testing.T) {
	dt, err := ParseDatetime("2023-10-15 12:30:45")
	require.NoError(t, err)
	require.Equal(t, "2023-10-15 12:30:45", dt.String())

	dt, err = ParseDatetime("2023-10-15 12:30:45.123456")
	require.NoError(t, err)
	require.Equal(t, "2023-10-15 12:30:45.123456", dt.String())

	d, err := ParseDate("2023-10-15")
	require.NoError(t, err)
	dt, err = ParseDatetime("2023-10-15 00:00:00")
	require.NoError(t, err)
	require.Equal(t, int64(d)*secsPerDay*microSecsPerSec, int64(dt))
}

func TestRowLocator(t *testing.T) {
	l := NewRowLocator(2, 7)
	require.Equal(t, RowLocator{Batch: 2, Row: 7}, l)
	require.Equal(t, RowLocator{Batch: 5, Row: 7}, l.Shift(3))
	require.Equal(t, l, l.Shift(0))
	require.Equal(t, "(2, 7)", l.String())
}
