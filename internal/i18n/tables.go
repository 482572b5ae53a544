package i18n

type Key string

const (
	AppTitle          Key = "appTitle"
	AppSubtitle       Key = "appSubtitle"
	VaultOpen         Key = "vaultOpen"
	Username          Key = "username"
	Password          Key = "password"
	Logout            Key = "logout"
	BudgetRemaining   Key = "budgetRemaining"
	TotalBudget       Key = "totalBudget"
	MonthlyIncome     Key = "monthlyIncome"
	MonthlyExpense    Key = "monthlyExpense"
	AddEntry          Key = "addEntry"
	EditTransaction   Key = "editTransaction"
	ManageCategories  Key = "manageCategories"
	MonthTransactions Key = "monthTransactions"
	NoTransactions    Key = "noTransactions"
	Date              Key = "date"
	Type              Key = "type"
	Expense           Key = "expense"
	Income            Key = "income"
	Category          Key = "category"
	Amount            Key = "amount"
	Note              Key = "note"
	AddCategory       Key = "addCategory"
	EditCategory      Key = "editCategory"
	CategoryName      Key = "categoryName"
	CategoryColor     Key = "categoryColor"
	CannotDelete      Key = "cannotDelete"
	ExistingCategory  Key = "existingCategories"
	SetBudget         Key = "setBudget"
	BudgetAmount      Key = "budgetAmount"
	LoginSuccess      Key = "loginSuccess"
	LoginFailed       Key = "loginFailed"
	LoggedOut         Key = "loggedOut"
	NotLoggedIn       Key = "notLoggedIn"
	SessionExpired    Key = "sessionExpired"
	AddSuccess        Key = "addSuccess"
	UpdateSuccess     Key = "updateSuccess"
	DeleteSuccess     Key = "deleteSuccess"
	DeleteConfirm     Key = "deleteConfirm"
	DeleteTxWarning   Key = "deleteTransactionWarning"
	DeleteCatConfirm  Key = "deleteCategoryConfirm"
	DeleteCatWarning  Key = "deleteCategoryWarning"
	Deleted           Key = "deleted"
	Oops              Key = "oops"
	Error             Key = "error"
	Success           Key = "success"
	Yes               Key = "yes"
	No                Key = "no"
	RequestFailed     Key = "requestFailed"
	FillRequired      Key = "fillRequired"
	InvalidAmount     Key = "invalidAmount"
	InvalidDate       Key = "invalidDate"
	InvalidColor      Key = "invalidColor"
	NotFound          Key = "notFound"
	CachedData        Key = "cachedData"
	NoCachedData      Key = "noCachedData"
	LanguageSet       Key = "languageSet"
	ExportSuccess     Key = "exportSuccess"
	ChartSaved        Key = "chartSaved"
	NoChartData       Key = "noChartData"
	Cancel            Key = "cancel"
	Uncategorized     Key = "uncategorized"
	Adding            Key = "adding"
	Updating          Key = "updating"
	Delete            Key = "delete"
	Save              Key = "save"
	LogoutConfirm     Key = "logoutConfirm"
	Other             Key = "other"
	LoggedInAs        Key = "loggedInAs"
	UnknownCommand    Key = "unknownCommand"
	UnsupportedLang   Key = "unsupportedLang"
	ProtectedCategory Key = "protectedCategory"
	Commands          Key = "commands"
)

var tables = map[Lang]map[Key]string{
	ZH: {
		AppTitle:          "金金計較",
		AppSubtitle:       "私房錢記帳助手",
		VaultOpen:         "小金庫已開",
		Username:          "使用者名稱",
		Password:          "通關密碼",
		Logout:            "登出",
		BudgetRemaining:   "本月還能花",
		TotalBudget:       "總預算",
		MonthlyIncome:     "本月收入",
		MonthlyExpense:    "本月支出",
		AddEntry:          "記一筆",
		EditTransaction:   "編輯記帳",
		ManageCategories:  "管理分類",
		MonthTransactions: "月收支",
		NoTransactions:    "🍃 這裡空空的，還沒有紀錄喔！",
		Date:              "日期",
		Type:              "收支",
		Expense:           "支出",
		Income:            "收入",
		Category:          "類別",
		Amount:            "金額",
		Note:              "備註",
		AddCategory:       "新增分類",
		EditCategory:      "編輯類別",
		CategoryName:      "分類名稱",
		CategoryColor:     "顏色",
		CannotDelete:      "無法刪除",
		ExistingCategory:  "現有類別",
		SetBudget:         "設定預算",
		BudgetAmount:      "每月預算",
		LoginSuccess:      "登入成功！",
		LoginFailed:       "登入失敗",
		LoggedOut:         "已登出",
		NotLoggedIn:       "尚未登入，請先執行 login",
		SessionExpired:    "登入已過期，請重新登入",
		AddSuccess:        "新增成功！",
		UpdateSuccess:     "更新成功！",
		DeleteSuccess:     "刪除成功！",
		DeleteConfirm:     "確定要刪除嗎？",
		DeleteTxWarning:   "這筆紀錄會消失在時空縫隙中喔！",
		DeleteCatConfirm:  "刪除類別？",
		DeleteCatWarning:  "該類別無法復原喔！",
		Deleted:           "已刪除！",
		Oops:              "哎呀！",
		Error:             "錯誤",
		Success:           "成功",
		Yes:               "是",
		No:                "否",
		RequestFailed:     "請求失敗",
		FillRequired:      "請填寫所有必填欄位",
		InvalidAmount:     "請輸入有效金額",
		InvalidDate:       "請輸入有效日期 (YYYY-MM-DD)",
		InvalidColor:      "請輸入有效顏色 (#RRGGBB)",
		NotFound:          "找不到資料：%s",
		CachedData:        "離線資料，更新於 %s",
		NoCachedData:      "沒有離線資料",
		LanguageSet:       "語言已切換為中文",
		ExportSuccess:     "已匯出 %d 筆紀錄",
		ChartSaved:        "圖表已儲存至 %s",
		NoChartData:       "本月沒有支出紀錄",
		Cancel:            "取消",
		Uncategorized:     "未分類",
		Adding:            "新增中...",
		Updating:          "更新中...",
		Delete:            "刪除",
		Save:              "儲存",
		LogoutConfirm:     "確定要登出嗎？",
		Other:             "其他",
		LoggedInAs:        "已登入：%s",
		UnknownCommand:    "未知的指令：%s",
		UnsupportedLang:   "不支援的語言：%s（可用：zh、en）",
		ProtectedCategory: "預設類別無法刪除",
		Commands:          "可用指令",
	},
	EN: {
		AppTitle:          "Money Tracker",
		AppSubtitle:       "Secret Savings Assistant",
		VaultOpen:         "Vault Opened",
		Username:          "Username",
		Password:          "Password",
		Logout:            "Logout",
		BudgetRemaining:   "Budget Remaining",
		TotalBudget:       "Total Budget",
		MonthlyIncome:     "Monthly Income",
		MonthlyExpense:    "Monthly Expense",
		AddEntry:          "Add Entry",
		EditTransaction:   "Edit Transaction",
		ManageCategories:  "Manage Categories",
		MonthTransactions: "Transactions",
		NoTransactions:    "🍃 No transactions yet!",
		Date:              "Date",
		Type:              "Type",
		Expense:           "Expense",
		Income:            "Income",
		Category:          "Category",
		Amount:            "Amount",
		Note:              "Note",
		AddCategory:       "Add Category",
		EditCategory:      "Edit Category",
		CategoryName:      "Category Name",
		CategoryColor:     "Color",
		CannotDelete:      "Cannot Delete",
		ExistingCategory:  "Existing Categories",
		SetBudget:         "Set Budget",
		BudgetAmount:      "Monthly Budget",
		LoginSuccess:      "Login successful!",
		LoginFailed:       "Login failed",
		LoggedOut:         "Logged out",
		NotLoggedIn:       "Not logged in, run login first",
		SessionExpired:    "Session expired, please log in again",
		AddSuccess:        "Added successfully!",
		UpdateSuccess:     "Updated successfully!",
		DeleteSuccess:     "Deleted successfully!",
		DeleteConfirm:     "Are you sure you want to delete?",
		DeleteTxWarning:   "This record will be permanently deleted!",
		DeleteCatConfirm:  "Delete Category?",
		DeleteCatWarning:  "This category cannot be restored!",
		Deleted:           "Deleted!",
		Oops:              "Oops!",
		Error:             "Error",
		Success:           "Success",
		Yes:               "Yes",
		No:                "No",
		RequestFailed:     "Request failed",
		FillRequired:      "Please fill all required fields",
		InvalidAmount:     "Please enter a valid amount",
		InvalidDate:       "Please enter a valid date (YYYY-MM-DD)",
		InvalidColor:      "Please enter a valid color (#RRGGBB)",
		NotFound:          "Not found: %s",
		CachedData:        "Offline data, saved %s",
		NoCachedData:      "No offline data available",
		LanguageSet:       "Language set to English",
		ExportSuccess:     "Exported %d transactions",
		ChartSaved:        "Chart saved to %s",
		Cancel:            "Cancel",
		Uncategorized:     "Uncategorized",
		Adding:            "Adding...",
		Updating:          "Updating...",
		Delete:            "Delete",
		Save:              "Save",
		LogoutConfirm:     "Are you sure you want to logout?",
		Other:             "Other",
		LoggedInAs:        "Logged in as %s",
		UnknownCommand:    "Unknown command: %s",
		UnsupportedLang:   "Unsupported language: %s (use zh or en)",
		ProtectedCategory: "The default category cannot be deleted",
		Commands:          "Commands",
		// NoChartData intentionally missing: falls back to the zh table.
	},
}
