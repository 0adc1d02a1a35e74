package views

import "github.com/pterm/pterm"

type SystemInfoItem struct {
	ConfigPath     string
	DBDriver       string
	DBPath         string
	DBExists       bool // true = Found, false = Not Found
	AppDataDir     string
	ScheduleCron   string
	WebhookEnabled bool
}

func RenderSystemInfo(data SystemInfoItem) error {
	dbStatus := pterm.Green("Found")
	if !data.DBExists {
		dbStatus = pterm.Red("Not Found (Will be created)")
	}
	webhook := pterm.Gray("Disabled")
	if data.WebhookEnabled {
		webhook = pterm.Green("Enabled")
	}

	tableData := pterm.TableData{
		{"Configuration File", data.ConfigPath},
		{"Database Driver", data.DBDriver},
		{"Database Path", data.DBPath},
		{"Database Status", dbStatus},
		{"Sweep Schedule", data.ScheduleCron},
		{"Webhook Notifications", webhook},
		{"AppData Directory", data.AppDataDir},
	}

	return pterm.DefaultTable.WithData(tableData).Render()
}
