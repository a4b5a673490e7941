package billing

import "fmt"

// UsageType represents the type of resource being metered
type UsageType string

const (
	// UsageTypeAPICalls tracks the number of API requests made
	UsageTypeAPICalls UsageType = "API_CALLS"

	// UsageTypeStorageBytes tracks storage consumption in bytes
	UsageTypeStorageBytes UsageType = "STORAGE_BYTES"

	// UsageTypeActiveUsers tracks the number of active users in a billing period
	UsageTypeActiveUsers UsageType = "ACTIVE_USERS"

	// UsageTypeActiveCampaigns tracks the number of concurrently active campaigns
	UsageTypeActiveCampaigns UsageType = "ACTIVE_CAMPAIGNS"

	// UsageTypeBundlesCreated tracks the number of sponsorship bundles created
	UsageTypeBundlesCreated UsageType = "BUNDLES_CREATED"

	// UsageTypeMatchRuns tracks the number of matching runs executed
	UsageTypeMatchRuns UsageType = "MATCH_RUNS"

	// UsageTypeOffersSent tracks the number of offers dispatched to athletes
	UsageTypeOffersSent UsageType = "OFFERS_SENT"

	// UsageTypeAthleteProfiles tracks the number of athlete profiles
	UsageTypeAthleteProfiles UsageType = "ATHLETE_PROFILES"

	// UsageTypeBusinessProfiles tracks the number of business profiles
	UsageTypeBusinessProfiles UsageType = "BUSINESS_PROFILES"

	// UsageTypeMediaAssets tracks the number of media kit assets
	UsageTypeMediaAssets UsageType = "MEDIA_ASSETS"

	// UsageTypeDataExports tracks the number of data exports
	UsageTypeDataExports UsageType = "DATA_EXPORTS"

	// UsageTypeIntegrationCalls tracks external matching provider API calls
	UsageTypeIntegrationCalls UsageType = "INTEGRATION_CALLS"

	// UsageTypeNotificationsSent tracks notifications (email/SMS) sent
	UsageTypeNotificationsSent UsageType = "NOTIFICATIONS_SENT"

	// UsageTypeMediaBytes tracks media kit storage in bytes
	UsageTypeMediaBytes UsageType = "MEDIA_BYTES"
)

// String returns the string representation of UsageType
func (u UsageType) String() string {
	return string(u)
}

// IsValid returns true if the usage type is valid
func (u UsageType) IsValid() bool {
	switch u {
	case UsageTypeAPICalls,
		UsageTypeStorageBytes,
		UsageTypeActiveUsers,
		UsageTypeActiveCampaigns,
		UsageTypeBundlesCreated,
		UsageTypeMatchRuns,
		UsageTypeOffersSent,
		UsageTypeAthleteProfiles,
		UsageTypeBusinessProfiles,
		UsageTypeMediaAssets,
		UsageTypeDataExports,
		UsageTypeIntegrationCalls,
		UsageTypeNotificationsSent,
		UsageTypeMediaBytes:
		return true
	}
	return false
}

// Unit returns the measurement unit for this usage type
func (u UsageType) Unit() UsageUnit {
	switch u {
	case UsageTypeStorageBytes, UsageTypeMediaBytes:
		return UsageUnitBytes
	case UsageTypeActiveUsers, UsageTypeActiveCampaigns, UsageTypeAthleteProfiles,
		UsageTypeBusinessProfiles, UsageTypeMediaAssets:
		return UsageUnitCount
	default:
		return UsageUnitRequests
	}
}

// IsCountable returns true if this usage type represents a countable resource
// (e.g., users, campaigns) rather than an event-based metric (e.g., API calls)
func (u UsageType) IsCountable() bool {
	switch u {
	case UsageTypeActiveUsers, UsageTypeActiveCampaigns, UsageTypeAthleteProfiles,
		UsageTypeBusinessProfiles, UsageTypeMediaAssets:
		return true
	}
	return false
}

// IsAccumulative returns true if this usage type accumulates over time
// (e.g., API calls, bundles created) rather than being a point-in-time snapshot
func (u UsageType) IsAccumulative() bool {
	switch u {
	case UsageTypeAPICalls, UsageTypeBundlesCreated, UsageTypeMatchRuns,
		UsageTypeOffersSent, UsageTypeDataExports, UsageTypeIntegrationCalls,
		UsageTypeNotificationsSent:
		return true
	}
	return false
}

// IsStorage returns true if this usage type represents storage consumption
func (u UsageType) IsStorage() bool {
	switch u {
	case UsageTypeStorageBytes, UsageTypeMediaBytes:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the usage type
func (u UsageType) DisplayName() string {
	switch u {
	case UsageTypeAPICalls:
		return "API Calls"
	case UsageTypeStorageBytes:
		return "Storage"
	case UsageTypeActiveUsers:
		return "Active Users"
	case UsageTypeActiveCampaigns:
		return "Active Campaigns"
	case UsageTypeBundlesCreated:
		return "Bundles Created"
	case UsageTypeMatchRuns:
		return "Match Runs"
	case UsageTypeOffersSent:
		return "Offers Sent"
	case UsageTypeAthleteProfiles:
		return "Athlete Profiles"
	case UsageTypeBusinessProfiles:
		return "Business Profiles"
	case UsageTypeMediaAssets:
		return "Media Assets"
	case UsageTypeDataExports:
		return "Data Exports"
	case UsageTypeIntegrationCalls:
		return "Integration Calls"
	case UsageTypeNotificationsSent:
		return "Notifications Sent"
	case UsageTypeMediaBytes:
		return "Media Storage"
	default:
		return string(u)
	}
}

// AllUsageTypes returns all valid usage types
func AllUsageTypes() []UsageType {
	return []UsageType{
		UsageTypeAPICalls,
		UsageTypeStorageBytes,
		UsageTypeActiveUsers,
		UsageTypeActiveCampaigns,
		UsageTypeBundlesCreated,
		UsageTypeMatchRuns,
		UsageTypeOffersSent,
		UsageTypeAthleteProfiles,
		UsageTypeBusinessProfiles,
		UsageTypeMediaAssets,
		UsageTypeDataExports,
		UsageTypeIntegrationCalls,
		UsageTypeNotificationsSent,
		UsageTypeMediaBytes,
	}
}

// ParseUsageType parses a string into a UsageType
func ParseUsageType(s string) (UsageType, error) {
	u := UsageType(s)
	if !u.IsValid() {
		return "", fmt.Errorf("invalid usage type: %s", s)
	}
	return u, nil
}

// UsageUnit represents the unit of measurement for usage
type UsageUnit string

const (
	// UsageUnitRequests represents request/call count
	UsageUnitRequests UsageUnit = "requests"

	// UsageUnitBytes represents storage in bytes
	UsageUnitBytes UsageUnit = "bytes"

	// UsageUnitCount represents a simple count
	UsageUnitCount UsageUnit = "count"
)

// String returns the string representation of UsageUnit
func (u UsageUnit) String() string {
	return string(u)
}

// IsValid returns true if the usage unit is valid
func (u UsageUnit) IsValid() bool {
	switch u {
	case UsageUnitRequests, UsageUnitBytes, UsageUnitCount:
		return true
	}
	return false
}

// FormatValue formats a value with the appropriate unit suffix
func (u UsageUnit) FormatValue(value int64) string {
	switch u {
	case UsageUnitBytes:
		return formatBytes(value)
	case UsageUnitRequests:
		return fmt.Sprintf("%d requests", value)
	case UsageUnitCount:
		return fmt.Sprintf("%d", value)
	default:
		return fmt.Sprintf("%d", value)
	}
}

// formatBytes formats bytes into human-readable format
func formatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// ResetPeriod represents when usage counters reset
type ResetPeriod string

const (
	// ResetPeriodDaily resets usage daily
	ResetPeriodDaily ResetPeriod = "DAILY"

	// ResetPeriodWeekly resets usage weekly
	ResetPeriodWeekly ResetPeriod = "WEEKLY"

	// ResetPeriodMonthly resets usage monthly (most common for billing)
	ResetPeriodMonthly ResetPeriod = "MONTHLY"

	// ResetPeriodYearly resets usage yearly
	ResetPeriodYearly ResetPeriod = "YEARLY"

	// ResetPeriodNever never resets (for lifetime limits)
	ResetPeriodNever ResetPeriod = "NEVER"
)

// String returns the string representation of ResetPeriod
func (r ResetPeriod) String() string {
	return string(r)
}

// IsValid returns true if the reset period is valid
func (r ResetPeriod) IsValid() bool {
	switch r {
	case ResetPeriodDaily, ResetPeriodWeekly, ResetPeriodMonthly,
		ResetPeriodYearly, ResetPeriodNever:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the reset period
func (r ResetPeriod) DisplayName() string {
	switch r {
	case ResetPeriodDaily:
		return "Daily"
	case ResetPeriodWeekly:
		return "Weekly"
	case ResetPeriodMonthly:
		return "Monthly"
	case ResetPeriodYearly:
		return "Yearly"
	case ResetPeriodNever:
		return "Never"
	default:
		return string(r)
	}
}
