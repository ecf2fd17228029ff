package render

import "strings"

// translations holds the email copy per language. English is complete; other
// languages fall back to it key by key.
var translations = map[string]map[string]string{
	"en": {
		"daily.subject":          "Daily summary for %s (%s)",
		"daily.title":            "Daily summary",
		"daily.intro":            "Here is what happened on your project today.",
		"digest.subject":         "Activity digest for %s (%s)",
		"digest.title":           "Activity digest",
		"digest.intro":           "Here is what happened on your project since the last digest.",
		"section.overview":       "Activity overview",
		"section.equipment":      "Equipment",
		"section.materials":      "Materials",
		"section.inspections":    "Inspections",
		"section.rfis":           "RFIs",
		"section.defects":        "Defects",
		"section.pending":        "Pending approvals",
		"section.meetings":       "Upcoming meetings",
		"section.progress":       "Overall progress",
		"stat.created":           "Submitted",
		"stat.approved":          "Approved",
		"stat.rejected":          "Rejected",
		"stat.completed":         "Completed",
		"stat.findings":          "New findings",
		"stat.opened":            "Opened",
		"stat.answered":          "Answered",
		"stat.closed":            "Closed",
		"stat.overdue":           "Overdue",
		"stat.new":               "New",
		"stat.resolved":          "Resolved",
		"stat.critical_open":     "Critical open",
		"pending.body":           "items are waiting for your review",
		"entity.equipment":       "Equipment",
		"entity.materials":       "Materials",
		"entity.material":        "Material",
		"entity.rfi":             "RFI",
		"entity.inspection":      "Inspection",
		"entity.defect":          "Defect",
		"entity.meeting":         "Meeting",
		"entity.project":         "Project",
		"action.create":          "created",
		"action.update":          "updated",
		"action.delete":          "deleted",
		"action.approve":         "approved",
		"action.reject":          "rejected",
		"action.comment":         "commented",
		"cta.open_project":       "Open project",
		"footer":                 "You receive this email as a project admin in BuilderOps.",
		"rfi.subject":            "RFI deadlines for %s",
		"rfi.title":              "RFI deadline reminder",
		"rfi.intro":              "The following RFIs need a response.",
		"rfi.due":                "Due",
		"rfi.overdue":            "Overdue",
		"rfi.due_soon":           "Due soon",
		"approval.subject":       "Approvals waiting for %s",
		"approval.title":         "Approval reminder",
		"approval.intro":         "These submissions have been waiting for review for more than %d days.",
		"approval.pending_since": "Pending since",
	},
	"he": {
		"daily.subject":          "סיכום יומי עבור %s (%s)",
		"daily.title":            "סיכום יומי",
		"daily.intro":            "זה מה שקרה היום בפרויקט שלך.",
		"digest.subject":         "סיכום פעילות עבור %s (%s)",
		"digest.title":           "סיכום פעילות",
		"digest.intro":           "זה מה שקרה בפרויקט שלך מאז הסיכום הקודם.",
		"section.overview":       "סקירת פעילות",
		"section.equipment":      "ציוד",
		"section.materials":      "חומרים",
		"section.inspections":    "בדיקות",
		"section.rfis":           "בקשות מידע",
		"section.defects":        "ליקויים",
		"section.pending":        "ממתינים לאישור",
		"section.meetings":       "פגישות קרובות",
		"section.progress":       "התקדמות כוללת",
		"stat.created":           "הוגשו",
		"stat.approved":          "אושרו",
		"stat.rejected":          "נדחו",
		"stat.completed":         "הושלמו",
		"stat.findings":          "ממצאים חדשים",
		"stat.opened":            "נפתחו",
		"stat.answered":          "נענו",
		"stat.closed":            "נסגרו",
		"stat.overdue":           "באיחור",
		"stat.new":               "חדשים",
		"stat.resolved":          "טופלו",
		"stat.critical_open":     "קריטיים פתוחים",
		"pending.body":           "פריטים ממתינים לבדיקתך",
		"entity.equipment":       "ציוד",
		"entity.materials":       "חומרים",
		"entity.material":        "חומר",
		"entity.rfi":             "בקשת מידע",
		"entity.inspection":      "בדיקה",
		"entity.defect":          "ליקוי",
		"entity.meeting":         "פגישה",
		"entity.project":         "פרויקט",
		"action.create":          "נוצר",
		"action.update":          "עודכן",
		"action.delete":          "נמחק",
		"action.approve":         "אושר",
		"action.reject":          "נדחה",
		"action.comment":         "הגיבו",
		"cta.open_project":       "פתח את הפרויקט",
		"footer":                 "קיבלת הודעה זו כמנהל פרויקט ב-BuilderOps.",
		"rfi.subject":            "מועדי בקשות מידע עבור %s",
		"rfi.title":              "תזכורת מועדי בקשות מידע",
		"rfi.intro":              "בקשות המידע הבאות ממתינות לתשובה.",
		"rfi.due":                "מועד",
		"rfi.overdue":            "באיחור",
		"rfi.due_soon":           "בקרוב",
		"approval.subject":       "אישורים ממתינים עבור %s",
		"approval.title":         "תזכורת אישורים",
		"approval.intro":         "ההגשות הבאות ממתינות לבדיקה יותר מ-%d ימים.",
		"approval.pending_since": "ממתין מאז",
	},
}

// Translate returns the string for key in lang, falling back to English and
// then to the key itself
func Translate(key, lang string) string {
	if s, ok := translations[lang][key]; ok {
		return s
	}
	if s, ok := translations[DefaultLanguage][key]; ok {
		return s
	}
	return key
}

// labels returns the full string table for lang with English filling the
// gaps. Keys use underscores so templates can address them as fields.
func labels(lang string) map[string]string {
	out := make(map[string]string, len(translations[DefaultLanguage]))
	for _, table := range []map[string]string{translations[DefaultLanguage], translations[lang]} {
		for k, v := range table {
			out[strings.ReplaceAll(k, ".", "_")] = v
		}
	}
	return out
}

// humanize renders an audit entity type or action the table does not know
func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

func translateOr(key, lang, fallback string) string {
	if s := Translate(key, lang); s != key {
		return s
	}
	return humanize(fallback)
}
