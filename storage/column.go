package storage

import (
	"reflect"
	"unsafe"

	"github.com/rotisserie/eris"

	"github.com/joshua-maros/hecs/types"
)

// startingCapacity is the row capacity a column grows to on its first append.
const startingCapacity = 64

// Column is type-erased storage for one component type within one archetype.
// Values are held in a slice of the component's concrete type built through
// reflection, so the garbage collector scans component fields normally and
// the only pointer cast in the storage layer is the one in CellPointer.
//
// The column does not track its own length; the owning archetype does, and
// all columns of an archetype share it.
type Column struct {
	meta   types.ComponentMetadata
	data   reflect.Value // slice of meta.Type(), len == cap
	borrow borrowFlag
}

func newColumn(meta types.ComponentMetadata) *Column {
	return &Column{
		meta: meta,
		data: reflect.MakeSlice(reflect.SliceOf(meta.Type()), 0, 0),
	}
}

// Metadata returns the component type stored in this column.
func (c *Column) Metadata() types.ComponentMetadata {
	return c.meta
}

func (c *Column) capacity() int {
	return c.data.Len()
}

// grow moves existing values into a larger backing slice. Growth is
// geometric; values are transferred by assignment so component fields that
// reference external resources stay owned by exactly one slot.
func (c *Column) grow(minCapacity int) {
	newCap := c.capacity() * 2
	if newCap < startingCapacity {
		newCap = startingCapacity
	}
	for newCap < minCapacity {
		newCap *= 2
	}
	newData := reflect.MakeSlice(c.data.Type(), newCap, newCap)
	reflect.Copy(newData, c.data)
	c.data = newData
}

// set overwrites the cell at row with the given value. The previous value is
// dropped by the overwrite.
func (c *Column) set(row int, value types.Component) error {
	v := reflect.ValueOf(value)
	if v.Type() != c.meta.Type() {
		return eris.Errorf("component %q holds %v, cannot store %v", c.meta.Name(), c.meta.Type(), v.Type())
	}
	c.data.Index(row).Set(v)
	return nil
}

// moveFrom transfers the value at src[srcRow] into c[dstRow] and zeroes the
// source cell so the value is owned by exactly one slot.
func (c *Column) moveFrom(dstRow int, src *Column, srcRow int) {
	srcCell := src.data.Index(srcRow)
	c.data.Index(dstRow).Set(srcCell)
	srcCell.SetZero()
}

// swapRemove drops the value at row. Unless row is the last row, the last
// row's value is relocated into the vacated slot. The vacated last cell is
// zeroed so the garbage collector can reclaim anything it referenced.
func (c *Column) swapRemove(row, lastRow int) {
	if row != lastRow {
		c.data.Index(row).Set(c.data.Index(lastRow))
	}
	c.data.Index(lastRow).SetZero()
}

// Value returns a copy of the cell at row.
func (c *Column) Value(row int) types.Component {
	return c.data.Index(row).Interface().(types.Component)
}

// CellPointer returns the address of the cell at row. This is the single
// point where the type-erased store hands out a raw pointer; callers convert
// it to a concrete *T exactly once, at an explicitly typed accessor.
func (c *Column) CellPointer(row int) unsafe.Pointer {
	return c.data.Index(row).Addr().UnsafePointer()
}

// AcquireShared takes a shared borrow on the column, failing with
// ErrComponentAlreadyBorrowed if an exclusive borrow is live.
func (c *Column) AcquireShared() error {
	if !c.borrow.acquireShared() {
		return eris.Wrapf(ErrComponentAlreadyBorrowed, "component %q", c.meta.Name())
	}
	return nil
}

// ReleaseShared undoes one AcquireShared.
func (c *Column) ReleaseShared() {
	c.borrow.releaseShared()
}

// AcquireExclusive takes the sole exclusive borrow on the column, failing
// with ErrComponentAlreadyBorrowed unless the column is free.
func (c *Column) AcquireExclusive() error {
	if !c.borrow.acquireExclusive() {
		return eris.Wrapf(ErrComponentAlreadyBorrowed, "component %q", c.meta.Name())
	}
	return nil
}

// ReleaseExclusive undoes AcquireExclusive.
func (c *Column) ReleaseExclusive() {
	c.borrow.releaseExclusive()
}
