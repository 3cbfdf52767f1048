package models

// StatusReport holds the parsed fields of `show redistribution service status`.
type StatusReport struct {
	RedistributionStatus string
	SSLConfig            string // normalized: lowercase, spaces replaced by underscores
	NumberOfClients      int
}

// Up reports whether the redistribution service is running.
func (r StatusReport) Up() bool {
	return r.RedistributionStatus == "up"
}

// UsesDefaultCerts reports whether the service runs on the factory SSL configuration.
func (r StatusReport) UsesDefaultCerts() bool {
	return r.SSLConfig == "default_certificates"
}

// RedistClient is one client entry of `show redistribution service client all`.
// Host carries the client's serial number on Panorama.
type RedistClient struct {
	Host    string
	Port    string
	Vsys    string
	Version string
	Status  string
}

// ConnectedDevice is one entry of `show devices connected`.
type ConnectedDevice struct {
	Serial   string
	Hostname string
}

// DeviceRow is one line of the final report table.
type DeviceRow struct {
	Hostname         string
	IPAddress        string
	Serial           string
	Model            string
	SWVersion        string
	AppVersion       string
	DeviceCertStatus string
	RedistServer     bool // set when the firewall itself serves redistribution clients
}
