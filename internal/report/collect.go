package report

import (
	"time"

	"github.com/pkg/errors"

	"github.com/cwbudde/clut/internal/cl"
	"github.com/cwbudde/clut/internal/describe"
	"github.com/cwbudde/clut/internal/query"
)

// Collect renders every info of every platform and device into a report.
// Platforms without devices are kept with an empty device list.
func Collect(api cl.API, d *describe.Describer, name string, now time.Time) (*Report, error) {
	platforms, err := query.Platforms(api)
	if err != nil {
		return nil, err
	}

	r := &Report{Name: name, CreatedAt: now.UTC()}
	for _, p := range platforms {
		pname, ok := d.PlatformName(p)
		if !ok {
			pname = describe.NotAvailable
		}
		pr := Platform{Name: pname, Infos: d.CollectPlatformInfos(p), Devices: []Device{}}

		devices, err := query.Devices(api, p, cl.DeviceTypeAll)
		if err != nil && !errors.Is(err, query.ErrNoDevices) {
			return nil, errors.Wrapf(err, "platform %s", pname)
		}
		for _, dev := range devices {
			dname, ok := d.DeviceName(dev)
			if !ok {
				dname = describe.NotAvailable
			}
			pr.Devices = append(pr.Devices, Device{Name: dname, Infos: d.CollectDeviceInfos(dev)})
		}
		r.Platforms = append(r.Platforms, pr)
	}
	return r, nil
}
