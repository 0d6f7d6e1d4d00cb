//go:build windows

package cad

import (
	"context"
	"errors"
	"runtime"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"golang.org/x/sys/windows"
)

var (
	oleaut32                  = windows.NewLazySystemDLL("oleaut32.dll")
	procSafeArrayCreateVector = oleaut32.NewProc("SafeArrayCreateVector")
	procSafeArrayPutElement   = oleaut32.NewProc("SafeArrayPutElement")
	procSafeArrayDestroy      = oleaut32.NewProc("SafeArrayDestroy")
)

// sFalse is returned by CoInitializeEx when COM is already initialized on
// the thread.
const sFalse = 1

// AutoCAD drives a running AutoCAD instance over COM. Every polyline opens
// its own COM session; AutoCAD itself is left running.
type AutoCAD struct {
	ProgID string
}

// NewAutoCAD returns a host bound to the AutoCAD.Application ProgID.
func NewAutoCAD() *AutoCAD {
	return &AutoCAD{ProgID: DefaultProgID}
}

func (a *AutoCAD) AddClosedPolyline(ctx context.Context, coords []float64, color Color) error {
	if err := ctx.Err(); err != nil {
		return &HostError{Msg: "canceled", Err: err}
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oerr *ole.OleError
		if !errors.As(err, &oerr) || oerr.Code() != sFalse {
			return &HostError{Msg: "initializing COM", Err: err}
		}
	}
	defer ole.CoUninitialize()

	app, err := a.connect()
	if err != nil {
		return err
	}
	defer app.Release()

	if _, err := oleutil.PutProperty(app, "Visible", true); err != nil {
		return &HostError{Msg: "showing application", Err: err}
	}
	doc, err := getDispatch(app, "ActiveDocument")
	if err != nil {
		return err
	}
	defer doc.Release()
	space, err := getDispatch(doc, "ModelSpace")
	if err != nil {
		return err
	}
	defer space.Release()

	sa, err := doubleArray(coords)
	if err != nil {
		return err
	}
	defer procSafeArrayDestroy.Call(sa)
	arg := ole.NewVariant(ole.VT_ARRAY|ole.VT_R8, int64(sa))

	res, err := oleutil.CallMethod(space, "AddLightWeightPolyline", &arg)
	if err != nil {
		return &HostError{Msg: "AddLightWeightPolyline", Err: err}
	}
	pl := res.ToIDispatch()
	if pl == nil {
		return &HostError{Msg: "AddLightWeightPolyline returned no entity"}
	}
	defer pl.Release()

	if _, err := oleutil.PutProperty(pl, "Closed", true); err != nil {
		return &HostError{Msg: "closing polyline", Err: err}
	}
	if _, err := oleutil.PutProperty(pl, "Color", int32(color)); err != nil {
		return &HostError{Msg: "setting color", Err: err}
	}
	return nil
}

// connect attaches to a running instance, starting one if none is running.
func (a *AutoCAD) connect() (*ole.IDispatch, error) {
	progID := a.ProgID
	if progID == "" {
		progID = DefaultProgID
	}
	unknown, err := oleutil.GetActiveObject(progID)
	if err != nil {
		unknown, err = oleutil.CreateObject(progID)
		if err != nil {
			return nil, &HostError{Msg: "connecting to " + progID, Err: err}
		}
	}
	defer unknown.Release()
	disp, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, &HostError{Msg: "querying IDispatch", Err: err}
	}
	return disp, nil
}

func getDispatch(d *ole.IDispatch, name string) (*ole.IDispatch, error) {
	v, err := oleutil.GetProperty(d, name)
	if err != nil {
		return nil, &HostError{Msg: "reading " + name, Err: err}
	}
	disp := v.ToIDispatch()
	if disp == nil {
		return nil, &HostError{Msg: name + " is not an object"}
	}
	return disp, nil
}

// doubleArray copies coords into a one dimensional SAFEARRAY of VT_R8.
func doubleArray(coords []float64) (uintptr, error) {
	sa, _, _ := procSafeArrayCreateVector.Call(uintptr(ole.VT_R8), 0, uintptr(len(coords)))
	if sa == 0 {
		return 0, &HostError{Msg: "allocating point array"}
	}
	for i := range coords {
		idx := int32(i)
		hr, _, _ := procSafeArrayPutElement.Call(sa, uintptr(unsafe.Pointer(&idx)), uintptr(unsafe.Pointer(&coords[i])))
		if hr != 0 {
			procSafeArrayDestroy.Call(sa)
			return 0, &HostError{Msg: "filling point array", Err: ole.NewError(hr)}
		}
	}
	return sa, nil
}
