package bootstrap

import (
	"gorm.io/gorm"

	"clinic-erp-be/internal/crud"
	"clinic-erp-be/internal/entityconfig"
	"clinic-erp-be/internal/model"
	"clinic-erp-be/internal/registry"
	"clinic-erp-be/internal/repository/unitofwork"
	"clinic-erp-be/internal/service"
)

// registerEntities declares the entity fleet. Everything the engine knows
// about an entity type starts here: its category, config builder, model,
// optional read service and optional write overrides.
func registerEntities(
	entities *registry.Registry,
	overrides *crud.OverrideTable,
	db *gorm.DB,
	uowFactory unitofwork.RepositoryFactory,
) {
	entities.MustRegister(registry.Registration{
		EntityType:     "suppliers",
		Category:       entityconfig.CategoryMaster,
		ConfigBuilder:  supplierConfig,
		ModelPrototype: model.Supplier{},
		Enabled:        true,
	})
	overrides.Register("suppliers", service.NewSupplierService(uowFactory))

	entities.MustRegister(registry.Registration{
		EntityType:     "patients",
		Category:       entityconfig.CategoryMaster,
		ConfigBuilder:  patientConfig,
		ModelPrototype: model.Patient{},
		Service: registry.ServiceFunc(func() interface{} {
			return service.NewPatientReadService(db)
		}),
		Enabled:            true,
		CascadeInvalidates: []string{"invoices"},
	})

	entities.MustRegister(registry.Registration{
		EntityType:     "packages",
		Category:       entityconfig.CategoryMaster,
		ConfigBuilder:  packageConfig,
		ModelPrototype: model.TreatmentPackage{},
		Enabled:        true,
	})
	overrides.Register("packages", service.NewPackageService(uowFactory))

	entities.MustRegister(registry.Registration{
		EntityType:     "expense_categories",
		Category:       entityconfig.CategoryLookup,
		ConfigBuilder:  expenseCategoryConfig,
		ModelPrototype: model.ExpenseCategory{},
		Enabled:        true,
	})

	entities.MustRegister(registry.Registration{
		EntityType:     "supplier_payments",
		Category:       entityconfig.CategoryTransaction,
		ConfigBuilder:  supplierPaymentConfig,
		ModelPrototype: model.SupplierPayment{},
		Enabled:        true,
		CustomURLs: map[entityconfig.Operation]string{
			entityconfig.OpCreate: "/api/purchasing/v1/payments",
			entityconfig.OpUpdate: "/api/purchasing/v1/payments/{id}",
		},
		CascadeInvalidates: []string{"suppliers"},
	})

	entities.MustRegister(registry.Registration{
		EntityType:     "invoices",
		Category:       entityconfig.CategoryTransaction,
		ConfigBuilder:  invoiceConfig,
		ModelPrototype: model.Invoice{},
		Enabled:        true,
		CustomURLs: map[entityconfig.Operation]string{
			entityconfig.OpCreate: "/api/billing/v1/invoices",
			entityconfig.OpUpdate: "/api/billing/v1/invoices/{id}",
		},
	})

	// Registered but switched off: the engine answers for it without
	// ever routing a request to it.
	entities.MustRegister(registry.Registration{
		EntityType:    "collection_reports",
		Category:      entityconfig.CategoryReport,
		ConfigBuilder: collectionReportConfig,
		Enabled:       false,
	})

	entities.Freeze()
}

func supplierConfig() *entityconfig.EntityConfiguration {
	return &entityconfig.EntityConfiguration{
		EntityType:  "suppliers",
		DisplayName: "Supplier",
		PluralName:  "Suppliers",
		PrimaryKey:  "id",
		DefaultSort: "company_name ASC",
		Fields: []entityconfig.FieldDefinition{
			{Name: "supplier_code", Label: "Code", Type: entityconfig.FieldText, ShowInList: true, ShowInCreate: true, ShowInView: true, Filterable: true},
			{Name: "company_name", Label: "Company Name", Type: entityconfig.FieldText, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true, Filterable: true},
			{Name: "contact_person", Label: "Contact Person", Type: entityconfig.FieldText, ShowInList: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "phone", Label: "Phone", Type: entityconfig.FieldText, Virtual: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "email", Label: "Email", Type: entityconfig.FieldText, Virtual: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "address", Label: "Address", Type: entityconfig.FieldText, Virtual: true, VirtualTarget: "contact_info", VirtualKey: "address", ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "bank_name", Label: "Bank", Type: entityconfig.FieldText, Virtual: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "bank_account_number", Label: "Account No", Type: entityconfig.FieldText, Virtual: true, VirtualTarget: "bank_info", VirtualKey: "account_number", ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "tax_number", Label: "Tax Number", Type: entityconfig.FieldText, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "status", Label: "Status", Type: entityconfig.FieldText, ShowInList: true, ShowInView: true, Filterable: true},
			{Name: "notes", Label: "Notes", Type: entityconfig.FieldText, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
		},
		Permissions: map[entityconfig.Operation]string{
			entityconfig.OpCreate: "suppliers.create",
			entityconfig.OpUpdate: "suppliers.update",
			entityconfig.OpDelete: "suppliers.delete",
		},
		CreateEnabled: true,
		EditEnabled:   true,
		DeleteEnabled: true,
		SoftDelete:    true,
		Defaults:      map[string]interface{}{"status": "active"},
	}
}

func patientConfig() *entityconfig.EntityConfiguration {
	return &entityconfig.EntityConfiguration{
		EntityType:  "patients",
		DisplayName: "Patient",
		PluralName:  "Patients",
		PrimaryKey:  "id",
		DefaultSort: "full_name ASC",
		Fields: []entityconfig.FieldDefinition{
			{Name: "patient_code", Label: "Code", Type: entityconfig.FieldText, ShowInList: true, ShowInCreate: true, ShowInView: true, Filterable: true},
			{Name: "full_name", Label: "Full Name", Type: entityconfig.FieldText, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true, Filterable: true},
			{Name: "gender", Label: "Gender", Type: entityconfig.FieldText, ShowInCreate: true, ShowInEdit: true, ShowInView: true, Filterable: true},
			{Name: "date_of_birth", Label: "Date of Birth", Type: entityconfig.FieldDate, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "phone", Label: "Phone", Type: entityconfig.FieldText, Virtual: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "mobile", Label: "Mobile", Type: entityconfig.FieldText, Virtual: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "email", Label: "Email", Type: entityconfig.FieldText, Virtual: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "address", Label: "Address", Type: entityconfig.FieldText, Virtual: true, VirtualTarget: "contact_info", VirtualKey: "address", ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "blood_group", Label: "Blood Group", Type: entityconfig.FieldText, Virtual: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "allergies", Label: "Allergies", Type: entityconfig.FieldText, Virtual: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "chronic_conditions", Label: "Chronic Conditions", Type: entityconfig.FieldText, Virtual: true, ShowInEdit: true, ShowInView: true},
			{Name: "status", Label: "Status", Type: entityconfig.FieldText, ShowInList: true, ShowInView: true, Filterable: true},
		},
		Permissions: map[entityconfig.Operation]string{
			entityconfig.OpCreate: "patients.create",
			entityconfig.OpUpdate: "patients.update",
			entityconfig.OpDelete: "patients.delete",
		},
		CreateEnabled: true,
		EditEnabled:   true,
		DeleteEnabled: true,
		SoftDelete:    true,
		Defaults:      map[string]interface{}{"status": "active"},
	}
}

func packageConfig() *entityconfig.EntityConfiguration {
	return &entityconfig.EntityConfiguration{
		EntityType:  "packages",
		DisplayName: "Treatment Package",
		PluralName:  "Treatment Packages",
		PrimaryKey:  "id",
		DefaultSort: "name ASC",
		Fields: []entityconfig.FieldDefinition{
			{Name: "name", Label: "Name", Type: entityconfig.FieldText, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true, Filterable: true},
			{Name: "description", Label: "Description", Type: entityconfig.FieldText, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "price", Label: "Price", Type: entityconfig.FieldCurrency, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "sessions", Label: "Sessions", Type: entityconfig.FieldNumber, ShowInList: true, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "inclusions", Label: "Inclusions", Type: entityconfig.FieldVirtualJSON, ShowInCreate: true, ShowInEdit: true, ShowInView: true},
			{Name: "status", Label: "Status", Type: entityconfig.FieldText, ShowInList: true, ShowInView: true, Filterable: true},
		},
		Permissions: map[entityconfig.Operation]string{
			entityconfig.OpCreate: "packages.create",
			entityconfig.OpUpdate: "packages.update",
			entityconfig.OpDelete: "packages.delete",
		},
		CreateEnabled: true,
		EditEnabled:   true,
		DeleteEnabled: true,
		SoftDelete:    true,
		Defaults:      map[string]interface{}{"status": "active", "sessions": 1},
	}
}

func expenseCategoryConfig() *entityconfig.EntityConfiguration {
	return &entityconfig.EntityConfiguration{
		EntityType:  "expense_categories",
		DisplayName: "Expense Category",
		PluralName:  "Expense Categories",
		PrimaryKey:  "id",
		DefaultSort: "name ASC",
		Fields: []entityconfig.FieldDefinition{
			{Name: "name", Label: "Name", Type: entityconfig.FieldText, Required: true, ShowInList: true, ShowInView: true, Filterable: true},
			{Name: "code", Label: "Code", Type: entityconfig.FieldText, ShowInList: true, ShowInView: true, Filterable: true},
		},
	}
}

func supplierPaymentConfig() *entityconfig.EntityConfiguration {
	return &entityconfig.EntityConfiguration{
		EntityType:  "supplier_payments",
		DisplayName: "Supplier Payment",
		PluralName:  "Supplier Payments",
		PrimaryKey:  "id",
		DefaultSort: "payment_date DESC",
		Fields: []entityconfig.FieldDefinition{
			{Name: "supplier_id", Label: "Supplier", Type: entityconfig.FieldEntitySearch, ShowInList: true, ShowInView: true, Filterable: true},
			{Name: "payment_date", Label: "Date", Type: entityconfig.FieldDate, ShowInList: true, ShowInView: true, Filterable: true},
			{Name: "amount", Label: "Amount", Type: entityconfig.FieldCurrency, ShowInList: true, ShowInView: true},
			{Name: "method_amounts", Label: "Payment Methods", Type: entityconfig.FieldMultiMethodAmount, ShowInView: true},
			{Name: "reference_no", Label: "Reference", Type: entityconfig.FieldText, ShowInView: true, Filterable: true},
		},
		Permissions: map[entityconfig.Operation]string{
			entityconfig.OpDocument: "supplier_payments.document",
		},
	}
}

func invoiceConfig() *entityconfig.EntityConfiguration {
	return &entityconfig.EntityConfiguration{
		EntityType:  "invoices",
		DisplayName: "Invoice",
		PluralName:  "Invoices",
		PrimaryKey:  "id",
		DefaultSort: "invoice_date DESC",
		Fields: []entityconfig.FieldDefinition{
			{Name: "invoice_no", Label: "Invoice No", Type: entityconfig.FieldText, ShowInList: true, ShowInView: true, Filterable: true},
			{Name: "patient_id", Label: "Patient", Type: entityconfig.FieldEntitySearch, ShowInList: true, ShowInView: true, Filterable: true},
			{Name: "invoice_date", Label: "Date", Type: entityconfig.FieldDate, ShowInList: true, ShowInView: true, Filterable: true},
			{Name: "subtotal", Label: "Subtotal", Type: entityconfig.FieldCurrency, ShowInView: true},
			{Name: "discount", Label: "Discount", Type: entityconfig.FieldCurrency, ShowInView: true},
			{Name: "tax", Label: "Tax", Type: entityconfig.FieldCurrency, ShowInView: true},
			{Name: "total", Label: "Total", Type: entityconfig.FieldCurrency, ShowInList: true, ShowInView: true},
			{Name: "status", Label: "Status", Type: entityconfig.FieldText, ShowInList: true, ShowInView: true, Filterable: true},
		},
		Permissions: map[entityconfig.Operation]string{
			entityconfig.OpDocument: "invoices.document",
			entityconfig.OpExport:   "invoices.export",
		},
	}
}

func collectionReportConfig() *entityconfig.EntityConfiguration {
	return &entityconfig.EntityConfiguration{
		EntityType:  "collection_reports",
		DisplayName: "Collection Report",
		PluralName:  "Collection Reports",
		PrimaryKey:  "id",
	}
}
