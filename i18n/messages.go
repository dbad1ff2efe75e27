package i18n

var messages = map[string]map[string]string{
	LangFR: {
		// validation
		"required":             "Requis",
		"must_be_positive":     "Doit être positif",
		"must_be_non_negative": "Ne peut pas être négatif",
		"out_of_range":         "Hors limites",
		"invalid":              "Invalide",
		"at_least_one_item":    "Veuillez ajouter au moins un article",
		"customer_required":    "Veuillez entrer le nom du client",
		"file_too_large":       "Le fichier est trop grand. Maximum 2MB.",
		"not_an_image":         "Veuillez sélectionner une image.",
		"self_action":          "Impossible sur votre propre compte",

		// statuses and roles
		"status.PENDING":    "En attente",
		"status.PAID":       "Payé",
		"status.CANCELLED":  "Annulé",
		"status.OVERDUE":    "En retard",
		"role.ROLE_ADMIN":   "Administrateur",
		"role.ROLE_MANAGER": "Gestionnaire",
		"role.ROLE_USER":    "Utilisateur",

		// documents
		"doc.title":      "FACTURE",
		"doc.file":       "Facture",
		"doc.blank_file": "facture_vierge",
		"doc.sheet":      "Facture",

		"label.company_name":   "Nom de l'entreprise",
		"label.address":        "Adresse",
		"label.phone":          "Tél",
		"label.email":          "Email",
		"label.vat":            "TVA",
		"label.vat_number":     "N° TVA",
		"label.invoice_number": "N° Facture",
		"label.number_short":   "N°",
		"label.customer":       "Client",
		"label.date":           "Date",
		"label.due_date":       "Échéance",
		"label.status":         "Statut",
		"label.bill_to":        "Facturé à",
		"label.ship_to":        "Livré à",
		"label.client_name":    "Nom du client",
		"label.name":           "Nom",
		"label.city_postal":    "Ville, Code Postal",
		"label.city":           "Ville",
		"label.country":        "Pays",
		"label.bank_details":   "Coordonnées Bancaires",
		"label.bank":           "Banque",
		"label.notes":          "Notes",
		"label.terms":          "Conditions générales",
		"label.thanks":         "Merci pour votre confiance!",
		"label.sample_product": "Produit Exemple %d",
		"label.preview":        "Aperçu Facture",
		"label.numbering":      "Aperçu Numérotation",

		"col.product":     "Produit",
		"col.quantity":    "Quantité",
		"col.qty":         "Qté",
		"col.unit_price":  "Prix Unit.",
		"col.subtotal":    "Sous-total",
		"col.description": "Description",
		"col.tax_percent": "TVA %",
		"col.amount":      "Montant",
		"col.total":       "Total",

		"total.subtotal":    "Sous-total",
		"total.subtotal_ht": "Sous-total HT",
		"total.tax":         "TVA",
		"total.discount":    "Remise",
		"total.total":       "Total",
		"total.total_ttc":   "Total TTC",

		// activity feed
		"time.just_now": "À l'instant",
		"time.minutes":  "Il y a %d min",
		"time.hours":    "Il y a %dh",
		"time.days":     "Il y a %dj",

		// cli
		"msg.loading":          "Chargement...",
		"msg.session_expired":  "Session expirée, veuillez vous reconnecter (invoicedesk login)",
		"msg.logged_in":        "Connecté en tant que %s",
		"msg.logged_out":       "Déconnecté",
		"msg.invoice_created":  "Facture créée avec succès!",
		"msg.invoice_updated":  "Facture mise à jour avec succès!",
		"msg.status_updated":   "Statut mis à jour",
		"msg.confirm_status":   "Changer le statut de la facture %s en %s ?",
		"msg.confirm_delete":   "Supprimer %s ?",
		"msg.deleted":          "Supprimé",
		"msg.saved":            "Paramètres enregistrés",
		"msg.no_invoices":      "Aucune facture trouvée",
		"msg.exported":         "Exporté vers %s",
		"msg.not_allowed":      "Action non autorisée",
		"msg.language_changed": "Langue: %s",
	},
	LangEN: {
		"required":             "Required",
		"must_be_positive":     "Must be positive",
		"must_be_non_negative": "Cannot be negative",
		"out_of_range":         "Out of range",
		"invalid":              "Invalid",
		"at_least_one_item":    "Please add at least one valid item",
		"customer_required":    "Please enter customer name",
		"file_too_large":       "File is too large. Maximum 2MB.",
		"not_an_image":         "Please select an image file.",
		"self_action":          "Not allowed on your own account",

		"status.PENDING":    "Pending",
		"status.PAID":       "Paid",
		"status.CANCELLED":  "Cancelled",
		"status.OVERDUE":    "Overdue",
		"role.ROLE_ADMIN":   "Administrator",
		"role.ROLE_MANAGER": "Manager",
		"role.ROLE_USER":    "User",

		"doc.title":      "INVOICE",
		"doc.file":       "Invoice",
		"doc.blank_file": "blank_invoice",
		"doc.sheet":      "Invoice",

		"label.company_name":   "Company Name",
		"label.address":        "Address",
		"label.phone":          "Phone",
		"label.email":          "Email",
		"label.vat":            "VAT",
		"label.vat_number":     "VAT #",
		"label.invoice_number": "Invoice Number",
		"label.number_short":   "#",
		"label.customer":       "Customer",
		"label.date":           "Date",
		"label.due_date":       "Due Date",
		"label.status":         "Status",
		"label.bill_to":        "Bill To",
		"label.ship_to":        "Ship To",
		"label.client_name":    "Client Name",
		"label.name":           "Name",
		"label.city_postal":    "City, Postal Code",
		"label.city":           "City",
		"label.country":        "Country",
		"label.bank_details":   "Bank Details",
		"label.bank":           "Bank",
		"label.notes":          "Notes",
		"label.terms":          "Terms & Conditions",
		"label.thanks":         "Thank you for your business!",
		"label.sample_product": "Sample Product %d",
		"label.preview":        "Invoice Preview",
		"label.numbering":      "Numbering Preview",

		"col.product":     "Product",
		"col.quantity":    "Quantity",
		"col.qty":         "Qty",
		"col.unit_price":  "Unit Price",
		"col.subtotal":    "Subtotal",
		"col.description": "Description",
		"col.tax_percent": "Tax %",
		"col.amount":      "Amount",
		"col.total":       "Total",

		"total.subtotal":    "Subtotal",
		"total.subtotal_ht": "Subtotal",
		"total.tax":         "Tax",
		"total.discount":    "Discount",
		"total.total":       "Total",
		"total.total_ttc":   "Total",

		"time.just_now": "Just now",
		"time.minutes":  "%dm ago",
		"time.hours":    "%dh ago",
		"time.days":     "%dd ago",

		"msg.loading":          "Loading...",
		"msg.session_expired":  "Session expired, please log in again (invoicedesk login)",
		"msg.logged_in":        "Logged in as %s",
		"msg.logged_out":       "Logged out",
		"msg.invoice_created":  "Invoice created successfully!",
		"msg.invoice_updated":  "Invoice updated successfully!",
		"msg.status_updated":   "Status updated",
		"msg.confirm_status":   "Change status of invoice %s to %s?",
		"msg.confirm_delete":   "Delete %s?",
		"msg.deleted":          "Deleted",
		"msg.saved":            "Settings saved",
		"msg.no_invoices":      "No invoices found",
		"msg.exported":         "Exported to %s",
		"msg.not_allowed":      "Action not allowed",
		"msg.language_changed": "Language: %s",
	},
}
