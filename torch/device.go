package torch

// Device is a handle to a torch.device.
type Device struct {
	*Object
}

// Type returns the device type, e.g. "cpu" or "cuda".
func (d *Device) Type() (string, error) {
	attr, err := d.GetAttr("type")
	if err != nil {
		return "", err
	}
	defer attr.Close()
	return attr.Str()
}

// Index returns the device ordinal. ok is false when the device has no
// explicit index.
func (d *Device) Index() (index int64, ok bool, err error) {
	attr, err := d.GetAttr("index")
	if err != nil {
		return 0, false, err
	}
	defer attr.Close()

	isNone, err := attr.IsNone()
	if err != nil || isNone {
		return 0, false, err
	}
	index, err = attr.Int()
	if err != nil {
		return 0, false, err
	}
	return index, true, nil
}
