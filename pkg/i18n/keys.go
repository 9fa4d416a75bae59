package i18n

// Message keys used by the form lifecycle controller.
const (
	KeyDelRecordTitle      = "delRecordTitle"
	KeyUnsavedCloseConfirm = "unsavedCloseConfirm"
	KeyRecordSaved         = "recordSaved"
	KeyCantSaveRecord      = "cantSaveRecord"
	KeyRecordDeleted       = "recordDeleted"
	KeyCantDeleteRecord    = "cantDeleteRecord"
	KeyBeforeDeleteConfirm = "beforeDeleteConfirm"
	KeyInvalidForm         = "invalidForm"
	KeyFormNotChanged      = "formNotChanged"
	KeyAlertTitle          = "alertTitle"
	KeyUnknownServerError  = "unknownServerError"
	KeyCloseTitle          = "closeTitle"
)

// Defaults returns the built-in English messages.
func Defaults() map[string]string {
	return map[string]string{
		KeyDelRecordTitle:      "Delete record",
		KeyUnsavedCloseConfirm: "There are unsaved changes in this form. Are you sure you want to close it?",
		KeyRecordSaved:         "Record saved",
		KeyCantSaveRecord:      "Record cannot be saved",
		KeyRecordDeleted:       "Record successfully deleted",
		KeyCantDeleteRecord:    "This record cannot be deleted",
		KeyBeforeDeleteConfirm: "Are you sure you want to delete this record?",
		KeyInvalidForm:         "The form is not valid",
		KeyFormNotChanged:      "No changes to save",
		KeyAlertTitle:          "Information",
		KeyUnknownServerError:  "Unknown server error",
		KeyCloseTitle:          "Close form",
	}
}
