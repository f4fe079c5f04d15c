package catalog

import "fmt"

// Entity identifies a synced entity type. The string form is the
// configuration key and the sync-options key prefix.
type Entity string

const (
	Sites        Entity = "sites"
	Groups       Entity = "groups"
	People       Entity = "people"
	Devices      Entity = "devices"
	GroupMembers Entity = "groupMembers"
)

// All lists every entity in planning order. Sites and groups come before
// the people and devices that reference them.
var All = []Entity{Sites, Groups, People, Devices, GroupMembers}

// Parse converts a configuration key into an Entity.
func Parse(s string) (Entity, error) {
	for _, e := range All {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown entity %q", s)
}

// PrimaryKey returns the field that identifies a record of this entity on
// the remote side. Group members have none.
func (e Entity) PrimaryKey() string {
	switch e {
	case Groups, People, Devices:
		return FieldTargetName
	case Sites:
		return FieldName
	default:
		return ""
	}
}

// Mirrorable reports whether mirror mode applies to this entity.
func (e Entity) Mirrorable() bool {
	return e.PrimaryKey() != ""
}

// Catalog returns the entity's field catalog.
func (e Entity) Catalog() Catalog {
	switch e {
	case Groups:
		return groups
	case People:
		return people
	case Devices:
		return devices
	case Sites:
		return sites
	case GroupMembers:
		return groupMembers
	default:
		return nil
	}
}

var groups = Catalog{
	reserved(FieldID),
	scalar(FieldTargetName),
	scalar("description"),
	scalar("status"),
	scalar("groupType"),
	scalar("site"),
	boolean("allowDuplicates"),
	boolean("useDefaultDevices"),
	boolean("observedByAll"),
	boolean("externallyOwned"),
	list("supervisors", "supervisors"),
	list("observers", "observers"),
	reserved(FieldRecipientType),
	reserved(FieldExternalKey),
}

var people = Catalog{
	reserved(FieldID),
	scalar(FieldTargetName),
	scalar("firstName"),
	scalar("lastName"),
	scalar("licenseType"),
	scalar("language"),
	scalar("timezone"),
	scalar("webLogin"),
	scalar("phoneLogin"),
	scalar("phonePin"),
	scalar("site"),
	scalar("status"),
	boolean("externallyOwned"),
	list("roles", "roles"),
	list("supervisors", "supervisors"),
	reserved(FieldRecipientType),
	reserved(FieldExternalKey),
}

// Device fields other than owner are populated per device slot rather than
// from flat entity settings; see DeviceSlotFields.
var devices = Catalog{
	reserved(FieldID),
	scalar(FieldOwner),
	scalar(FieldTargetName),
	scalar(FieldName),
	scalar("deviceType"),
	scalar("emailAddress"),
	scalar("phoneNumber"),
	scalar("delay"),
	boolean("externallyOwned"),
	scalar("sequence"),
	scalar("priorityThreshold"),
	reserved(FieldRecipientType),
	reserved(FieldExternalKey),
}

var sites = Catalog{
	reserved(FieldID),
	scalar(FieldName),
	scalar("address1"),
	scalar("address2"),
	scalar("city"),
	scalar("state"),
	scalar("postalCode"),
	scalar("country"),
	scalar("language"),
	scalar("timezone"),
	scalar("latitude"),
	scalar("longitude"),
	scalar("status"),
	boolean("externallyOwned"),
	reserved(FieldExternalKey),
}

var groupMembers = Catalog{
	scalar(FieldGroup),
	list(FieldMembers, ""),
	reserved(FieldID),
}

// DeviceSlotFields are the device sub-fields each device slot resolves on
// its own, each gated by a <name>Sync flag.
var DeviceSlotFields = []string{"delay", "externallyOwned", "sequence", "priorityThreshold"}

// DefaultDeviceType is used when a device slot names no deviceType.
const DefaultDeviceType = "EMAIL"
