package sessionkit

import "context"

// DeviceClient is a thin pass-through over the Bearer-authenticated device
// endpoints. There is no local caching and no derived trust: the server's
// answer is the only truth about whether a device is trusted, and every call
// reflects its current state.
type DeviceClient struct {
	coord *Coordinator
}

// Devices returns the device accessor for the authenticated session.
func (c *Coordinator) Devices() *DeviceClient {
	return &DeviceClient{coord: c}
}

// List returns the user's registered devices.
func (d *DeviceClient) List(ctx context.Context) ([]Device, error) {
	token, err := d.coord.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return d.coord.api.ListDevices(ctx, token)
}

// Rename updates a device's display name and returns the updated record.
func (d *DeviceClient) Rename(ctx context.Context, deviceID, name string) (*Device, error) {
	token, err := d.coord.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return d.coord.api.RenameDevice(ctx, token, deviceID, name)
}

// Remove deletes a device registration, ending any trust window it held.
func (d *DeviceClient) Remove(ctx context.Context, deviceID string) error {
	token, err := d.coord.AccessToken(ctx)
	if err != nil {
		return err
	}
	return d.coord.api.RemoveDevice(ctx, token, deviceID)
}
