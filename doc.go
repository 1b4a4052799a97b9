// Copyright 2026 engineering@crossingstv.com. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package sales-report generates the weekly sales reports from the forecast workbook maintained
on the team Dropbox and emails them to the account executives and the management team.

sales-report can be used from the command line but is really intended to be run from a cron job
on a weekly schedule.

sales-report supports the following commands:

  - run, to execute the full pipeline - sync the working files, generate the reports and email them
  - download, to retrieve the forecast workbook, VBA project and email templates without sending anything
  - upload, to push the generated reports and run logs back to Dropbox for archival
  - version, to display the application version
*/
package salesreport
